package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/sensor-rewards/internal/pkg/model"
	"github.com/anicoll/sensor-rewards/internal/pkg/rewards"
	"github.com/anicoll/sensor-rewards/internal/pkg/store"
)

const (
	defaultPage     = 1
	defaultPageSize = 100
	maxPageSize     = 1000

	defaultSortField = "source_timestamp"
)

// sortFields maps external sort names onto store field names. Unknown names
// fall back to the source timestamp instead of erroring, consistent with the
// silent defaulting of page and pageSize.
var sortFields = map[string]string{
	"id":              "_id",
	"datatype":        "data_type",
	"sensorid":        "sensor_id",
	"value":           "value",
	"sourcetimestamp": "source_timestamp",
	"savedat":         "timestamp",
}

type measurementFinder interface {
	FindMeasurements(ctx context.Context, q store.Query) (model.Measurements, error)
	Ping(ctx context.Context) error
}

type rewardReporter interface {
	Report(ctx context.Context) ([]rewards.ReportEntry, error)
}

type server struct {
	store   measurementFinder
	rewards rewardReporter
	logger  *zap.Logger
	decoder *schema.Decoder
}

func New(st measurementFinder, rr rewardReporter) *server {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &server{
		store:   st,
		rewards: rr,
		logger:  zap.L(),
		decoder: decoder,
	}
}

func (s *server) Router() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/measurements", s.getMeasurements).Methods(http.MethodGet)
	router.HandleFunc("/sensors/rewards", s.getRewards).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.getHealth).Methods(http.MethodGet)
	router.Use(loggingMiddleware)

	return handlers.RecoveryHandler()(
		handlers.CORS(
			handlers.AllowedMethods([]string{http.MethodGet}),
			handlers.AllowedOrigins([]string{"*"}),
		)(router))
}

// queryParams keeps the numeric fields as strings so unparseable input falls
// back to defaults instead of failing the decode.
type queryParams struct {
	DataType string `schema:"dataType"`
	Sensors  string `schema:"sensors"`
	SortBy   string `schema:"sortBy"`
	SortDir  string `schema:"sortDir"`
	Page     string `schema:"page"`
	PageSize string `schema:"pageSize"`
	Format   string `schema:"format"`
}

func (s *server) getMeasurements(w http.ResponseWriter, r *http.Request) {
	params := queryParams{}
	if err := s.decoder.Decode(&params, r.URL.Query()); err != nil {
		s.logger.Error("query decode failed", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	results, err := s.store.FindMeasurements(r.Context(), buildQuery(params))
	if err != nil {
		s.logger.Error("measurement query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	switch strings.ToLower(params.Format) {
	case "csv":
		writeCSVAttachment(w, results)
	case "json":
		writeJSONAttachment(w, results)
	default:
		writeJSON(w, http.StatusOK, results)
	}
}

func (s *server) getRewards(w http.ResponseWriter, r *http.Request) {
	entries, err := s.rewards.Report(r.Context())
	if err != nil {
		s.logger.Error("rewards report failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "rewards report failed")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *server) getHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("store ping failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func buildQuery(params queryParams) store.Query {
	sortBy, ok := sortFields[strings.ToLower(params.SortBy)]
	if !ok {
		sortBy = defaultSortField
	}

	return store.Query{
		DataType:  params.DataType,
		SensorIDs: parseSensorList(params.Sensors),
		SortBy:    sortBy,
		Ascending: strings.EqualFold(params.SortDir, "asc"),
		Page:      parsePositive(params.Page, defaultPage, defaultPage, 0),
		PageSize:  parsePositive(params.PageSize, defaultPageSize, 1, maxPageSize),
	}
}

// parseSensorList splits a comma separated list, dropping blanks.
func parseSensorList(raw string) []string {
	return lo.FilterMap(strings.Split(raw, ","), func(entry string, _ int) (string, bool) {
		entry = strings.TrimSpace(entry)
		return entry, entry != ""
	})
}

// parsePositive returns fallback on unparseable input, floors at min and, when
// max is non-zero, caps at max.
func parsePositive(raw string, fallback, min, max int64) int64 {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	if value < min {
		return min
	}
	if max > 0 && value > max {
		return max
	}
	return value
}
