package server

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gosimple/slug"

	"github.com/anicoll/sensor-rewards/internal/pkg/model"
)

// rfc3339Milli keeps exported timestamps round-trippable at the precision the
// pipeline stores them.
const rfc3339Milli = "2006-01-02T15:04:05.000Z07:00"

var csvHeader = []string{"Id", "DataType", "SensorId", "Value", "SourceTimestamp", "SavedAt"}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeCSVAttachment(w http.ResponseWriter, measurements model.Measurements) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", attachment("csv"))

	writer := csv.NewWriter(w)
	_ = writer.Write(csvHeader)
	for _, m := range measurements {
		_ = writer.Write([]string{
			m.ID.Hex(),
			m.DataType.String(),
			m.SensorID,
			strconv.FormatFloat(m.Value, 'f', -1, 64),
			m.SourceTimestamp.UTC().Format(rfc3339Milli),
			m.SavedAt.UTC().Format(rfc3339Milli),
		})
	}
	writer.Flush()
}

// writeJSONAttachment renders the same records as the inline response but as a
// downloadable, indented file.
func writeJSONAttachment(w http.ResponseWriter, measurements model.Measurements) {
	payload, err := json.MarshalIndent(measurements, "", "  ")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", attachment("json"))
	_, _ = w.Write(payload)
}

func attachment(extension string) string {
	name := slug.Make(fmt.Sprintf("measurements %s", time.Now().UTC().Format("2006-01-02 15-04-05")))
	return fmt.Sprintf("attachment; filename=%q", name+"."+extension)
}
