package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger: a console writer on stdout and, when
// logFile is set, a plain JSON copy in that file. The returned closer
// releases the file.
func NewLogger(level, logFile string) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	consoleWriter := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stdout
	})

	var (
		writer io.Writer = consoleWriter
		closer io.Closer = nopCloser{}
	)
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), os.ModePerm); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to create log file: %w", err)
		}
		writer = zerolog.MultiLevelWriter(consoleWriter, file)
		closer = file
	}

	log := zerolog.New(writer).
		Level(lvl).
		With().
		Timestamp().
		Caller().
		Logger()
	return log, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OutputManager writes query results to timestamped JSON files.
type OutputManager struct {
	baseDir   string
	timestamp string
	log       zerolog.Logger
}

// NewOutputManager creates baseDir/<timestamp> and writes into it.
func NewOutputManager(baseDir string, log zerolog.Logger) (*OutputManager, error) {
	timestamp := time.Now().Format("20060102_150405")

	outputPath := filepath.Join(baseDir, timestamp)
	if err := os.MkdirAll(outputPath, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &OutputManager{
		baseDir:   outputPath,
		timestamp: timestamp,
		log:       log.With().Str("component", "output").Logger(),
	}, nil
}

// WriteToJSON writes data to <prefix>_<timestamp>.json and returns its path.
func (om *OutputManager) WriteToJSON(data any, prefix string) (string, error) {
	filename := fmt.Sprintf("%s_%s.json", prefix, om.timestamp)
	outputPath := filepath.Join(om.baseDir, filename)

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := Encode(file, data); err != nil {
		return "", err
	}

	om.log.Debug().
		Str("file", outputPath).
		Str("prefix", prefix).
		Msg("Wrote data to JSON file")

	return outputPath, nil
}

// Encode writes data as indented JSON without HTML escaping.
func Encode(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode data to JSON: %w", err)
	}
	return nil
}

func (om *OutputManager) GetBaseDir() string {
	return om.baseDir
}
