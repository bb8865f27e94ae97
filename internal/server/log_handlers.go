package server

import (
	"bufio"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/valveprice/internal/utils"
	"github.com/rs/zerolog"
)

// Line limits for log queries
const (
	defaultLogLines = 100
	defaultErrLines = 500
	maxLogLines     = 10000
)

// LogHandlers serves the tail of the rotating log file
type LogHandlers struct {
	log  zerolog.Logger
	path string
}

// NewLogHandlers creates a new log handlers instance; path is the configured LOG_FILE
func NewLogHandlers(log zerolog.Logger, path string) *LogHandlers {
	return &LogHandlers{
		log:  log.With().Str("component", "log_handlers").Logger(),
		path: path,
	}
}

// LogContentResponse represents log content
type LogContentResponse struct {
	Lines  []string `json:"lines"`
	Total  int      `json:"total"`
	Status string   `json:"status"`
}

// HandleGetLogs handles GET /api/system/logs with optional level and search filters
func (h *LogHandlers) HandleGetLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lines, err := parseLines(q.Get("lines"), defaultLogLines)
	if err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.serve(w, r, lines, strings.ToUpper(q.Get("level")), q.Get("search"))
}

// HandleGetErrors handles GET /api/system/logs/errors
func (h *LogHandlers) HandleGetErrors(w http.ResponseWriter, r *http.Request) {
	lines, err := parseLines(r.URL.Query().Get("lines"), defaultErrLines)
	if err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.serve(w, r, lines, "ERROR", "")
}

func (h *LogHandlers) serve(w http.ResponseWriter, r *http.Request, lines int, level, search string) {
	if h.path == "" {
		utils.WriteError(w, r, http.StatusNotFound, "file logging is disabled (LOG_FILE not set)")
		return
	}

	h.log.Debug().
		Int("lines", lines).
		Str("level", level).
		Str("search", search).
		Msg("Reading log file")

	logLines, err := tailFile(h.path, lines)
	if errors.Is(err, os.ErrNotExist) {
		logLines, err = []string{}, nil
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read log file")
		utils.WriteError(w, r, http.StatusInternalServerError, "failed to read logs")
		return
	}

	utils.WriteResponse(w, r, http.StatusOK, map[string]interface{}{
		"data": LogContentResponse{
			Lines:  filterLogs(logLines, level, search),
			Total:  len(logLines),
			Status: "ok",
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func parseLines(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("lines must be a positive integer")
	}
	if n > maxLogLines {
		n = maxLogLines
	}
	return n, nil
}

// tailFile returns the last n lines of a file
func tailFile(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(ring) == n {
			ring = ring[1:]
		}
		ring = append(ring, scanner.Text())
	}
	return ring, scanner.Err()
}

// filterLogs filters log lines by level and search term
func filterLogs(lines []string, level string, search string) []string {
	filtered := make([]string, 0, len(lines))

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if level != "" && !lineMatchesLevel(line, level) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(line), strings.ToLower(search)) {
			continue
		}
		filtered = append(filtered, line)
	}

	return filtered
}

// lineMatchesLevel checks if a log line matches the specified level.
// Supports zerolog JSON lines and console-formatted lines.
func lineMatchesLevel(line string, level string) bool {
	if strings.Contains(line, `"level"`) {
		return strings.Contains(strings.ToLower(line), `"level":"`+strings.ToLower(level)+`"`)
	}

	upperLine := strings.ToUpper(line)
	upperLevel := strings.ToUpper(level)

	if short, ok := consoleLevels[upperLevel]; ok && strings.Contains(upperLine, " "+short+" ") {
		return true
	}
	return strings.Contains(upperLine, upperLevel+":") ||
		strings.Contains(upperLine, "["+upperLevel+"]") ||
		strings.Contains(upperLine, " "+upperLevel+" ")
}

// consoleLevels maps level names to zerolog console abbreviations
var consoleLevels = map[string]string{
	"DEBUG": "DBG",
	"INFO":  "INF",
	"WARN":  "WRN",
	"ERROR": "ERR",
	"FATAL": "FTL",
}
