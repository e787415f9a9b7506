package restserver

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/chrissnell/suntracker/internal/experiment"
	"github.com/chrissnell/suntracker/internal/log"
	"github.com/chrissnell/suntracker/internal/reward"
	"github.com/chrissnell/suntracker/internal/sim"
	"github.com/chrissnell/suntracker/internal/storage"
	"github.com/chrissnell/suntracker/internal/types"
	"github.com/chrissnell/suntracker/pkg/responseformat"
	"github.com/chrissnell/suntracker/pkg/solar"
)

const dateLayout = "2006-01-02"

// RecordSource reads stored records back.
type RecordSource interface {
	Records(ctx context.Context, runID string) ([]types.Record, error)
}

// Results holds the most recent experiment result.
type Results struct {
	mu         sync.RWMutex
	latest     *experiment.Result
	comparison map[string]experiment.Series
}

// Set replaces the latest result. comparison may be nil.
func (r *Results) Set(res *experiment.Result, comparison map[string]experiment.Series) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest = res
	r.comparison = comparison
}

// Latest returns the latest result, or nil before the first run finishes.
func (r *Results) Latest() (*experiment.Result, map[string]experiment.Series) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.comparison
}

// Service is what the handlers compute with. Query parameters override the
// location per request.
type Service struct {
	Location     solar.Location
	Algorithm    solar.Algorithm
	Reward       reward.Config // Location and Sun are set per request
	PanelStepDeg float64
	DualAxis     bool

	Results *Results               // optional
	Records RecordSource           // optional
	Health  *storage.HealthManager // optional
}

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	svc        Service
	calculator *solar.Calculator
	formatter  *responseformat.Formatter
}

// NewHandlers validates svc and creates a new handlers instance
func NewHandlers(svc Service) (*Handlers, error) {
	calculator, err := solar.NewCalculator(string(svc.Algorithm))
	if err != nil {
		return nil, err
	}
	check := svc.Reward
	check.Location = svc.Location
	if _, err := reward.NewAssembler(check); err != nil {
		return nil, err
	}
	if !(svc.PanelStepDeg > 0) {
		return nil, fmt.Errorf("panel step must be positive, got %v", svc.PanelStepDeg)
	}
	if svc.Results == nil {
		svc.Results = &Results{}
	}

	return &Handlers{
		svc:        svc,
		calculator: calculator,
		formatter:  responseformat.NewFormatter(),
	}, nil
}

// Router returns a router serving every endpoint.
func (h *Handlers) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(log.HTTPMiddleware)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/sun", h.GetSun).Methods(http.MethodGet)
	api.HandleFunc("/irradiance", h.GetIrradiance).Methods(http.MethodGet)
	api.HandleFunc("/reward", h.GetReward).Methods(http.MethodGet)
	api.HandleFunc("/daylight", h.GetDaylight).Methods(http.MethodGet)
	api.HandleFunc("/results/latest", h.GetLatestResult).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}/records", h.GetRunRecords).Methods(http.MethodGet)
	api.HandleFunc("/storage/health", h.GetStorageHealth).Methods(http.MethodGet)

	return router
}

// GetSun returns the sun position for a place and time.
// Query parameters: lat, lon, time (RFC 3339, default now), algorithm.
func (h *Handlers) GetSun(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	loc, t, err := h.placeAndTime(q)
	if err != nil {
		h.fail(w, req, http.StatusBadRequest, err.Error())
		return
	}

	calc := h.calculator
	if name := q.Get("algorithm"); name != "" {
		if calc, err = solar.NewCalculator(name); err != nil {
			h.fail(w, req, http.StatusBadRequest, err.Error())
			return
		}
	}

	sun := calc.Position(loc, t)
	sunrise, sunset := solar.DaylightWindow(solar.DayOfYear(t), loc)
	h.write(w, req, SunResponse{
		Time:         t,
		Location:     loc,
		Algorithm:    string(calc.Algorithm()),
		Sun:          sun,
		AboveHorizon: sun.AboveHorizon(),
		Daylight:     solar.IsDaylight(loc, t),
		Sunrise:      solar.FormatSunTime(sunrise, time.UTC),
		Sunset:       solar.FormatSunTime(sunset, time.UTC),
	})
}

// GetIrradiance returns the clear-sky irradiance on a panel.
// Query parameters: lat, lon, time, ns, ew, reflective.
func (h *Handlers) GetIrradiance(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	loc, t, err := h.placeAndTime(q)
	if err != nil {
		h.fail(w, req, http.StatusBadRequest, err.Error())
		return
	}
	pose, err := poseParam(q)
	if err != nil {
		h.fail(w, req, http.StatusBadRequest, err.Error())
		return
	}
	idx, err := floatParam(q, "reflective", h.svc.Reward.ReflectiveIndex)
	if err != nil || idx < 0 || idx > 1 {
		h.fail(w, req, http.StatusBadRequest, "reflective must be a number within [0, 1]")
		return
	}

	sun := h.calculator.Position(loc, t)
	components := h.svc.Reward.Irradiance.Components(t, sun.AltitudeDeg, idx)
	tilt := solar.Tilt(sun, pose.NS, pose.EW)
	flux := components.Weighted(tilt)

	h.write(w, req, IrradianceResponse{
		Time:         t,
		Location:     loc,
		Sun:          sun,
		Pose:         pose,
		Irradiance:   components,
		Tilt:         tilt,
		IncidenceDeg: solar.AngleBetween(sun.Vector(), solar.PanelNormal(pose.NS, pose.EW)),
		Flux:         flux,
		Power:        h.svc.Reward.Panel.ElectricalPower(flux),
	})
}

// GetReward scores one action taken from a pose.
// Query parameters: lat, lon, time, ns, ew, action (default do_nothing).
func (h *Handlers) GetReward(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	loc, t, err := h.placeAndTime(q)
	if err != nil {
		h.fail(w, req, http.StatusBadRequest, err.Error())
		return
	}
	from, err := poseParam(q)
	if err != nil {
		h.fail(w, req, http.StatusBadRequest, err.Error())
		return
	}

	action := sim.DoNothing
	if a := q.Get("action"); a != "" {
		action = sim.Action(a)
	}
	if err := sim.ActionsFor(h.svc.DualAxis).Validate(action); err != nil {
		h.fail(w, req, http.StatusBadRequest, err.Error())
		return
	}

	rc := h.svc.Reward
	rc.Location = loc
	rc.Sun = h.calculator.Position
	assembler, err := reward.NewAssembler(rc)
	if err != nil {
		h.fail(w, req, http.StatusInternalServerError, err.Error())
		return
	}

	bounds := sim.NewBounds(rc.Panel.Spec().Bounds, h.svc.DualAxis)
	from = from.Clamp(bounds)
	tr := sim.Transition{
		Time:   t,
		From:   from,
		To:     from.Apply(action, h.svc.PanelStepDeg, bounds),
		Action: action,
	}
	b, err := assembler.Breakdown(tr)
	if err != nil {
		log.Errorf("reward breakdown failed: %v", err)
		h.fail(w, req, http.StatusInternalServerError, "error computing reward")
		return
	}

	h.write(w, req, RewardResponse{
		Location:  loc,
		Action:    string(action),
		From:      tr.From,
		To:        tr.To,
		Mode:      string(assembler.Config().Mode),
		Units:     string(assembler.Config().Units),
		Breakdown: b,
	})
}

// GetDaylight returns the daylight window and clear-sky insolation for a day.
// Query parameters: lat, lon, date (YYYY-MM-DD, default today), reflective.
func (h *Handlers) GetDaylight(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	loc, err := h.location(q)
	if err != nil {
		h.fail(w, req, http.StatusBadRequest, err.Error())
		return
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if d := q.Get("date"); d != "" {
		if date, err = time.Parse(dateLayout, d); err != nil {
			h.fail(w, req, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}
	idx, err := floatParam(q, "reflective", h.svc.Reward.ReflectiveIndex)
	if err != nil || idx < 0 || idx > 1 {
		h.fail(w, req, http.StatusBadRequest, "reflective must be a number within [0, 1]")
		return
	}

	sunrise, sunset := solar.DaylightWindow(solar.DayOfYear(date), loc)
	irr := h.svc.Reward.Irradiance
	h.write(w, req, DaylightResponse{
		Date:               date.Format(dateLayout),
		Location:           loc,
		Sunrise:            solar.FormatSunTime(sunrise, time.UTC),
		Sunset:             solar.FormatSunTime(sunset, time.UTC),
		SunriseMinutes:     sunrise,
		SunsetMinutes:      sunset,
		Polar:              sunrise < 0,
		FlatInsolation:     irr.ClearSkyInsolation(h.calculator.Position, loc, date, 0, 0, idx),
		TrackingInsolation: irr.TrackingInsolation(h.calculator.Position, loc, date, idx),
	})
}

// GetLatestResult returns the summary of the most recent experiment run.
func (h *Handlers) GetLatestResult(w http.ResponseWriter, req *http.Request) {
	res, comparison := h.svc.Results.Latest()
	if res == nil {
		h.fail(w, req, http.StatusNotFound, "no experiment has finished yet")
		return
	}
	h.write(w, req, ResultResponse{Result: res, AxisComparison: comparison})
}

// GetRunRecords returns every stored chunk record of a run.
func (h *Handlers) GetRunRecords(w http.ResponseWriter, req *http.Request) {
	if h.svc.Records == nil {
		h.fail(w, req, http.StatusServiceUnavailable, "no queryable storage backend configured")
		return
	}

	runID := mux.Vars(req)["id"]
	records, err := h.svc.Records.Records(req.Context(), runID)
	if err != nil {
		log.Errorf("error querying records of run %s: %v", runID, err)
		h.fail(w, req, http.StatusInternalServerError, "error querying records")
		return
	}
	if len(records) == 0 {
		h.fail(w, req, http.StatusNotFound, "run not found")
		return
	}
	h.write(w, req, records)
}

// GetStorageHealth returns the last health check of each storage backend.
func (h *Handlers) GetStorageHealth(w http.ResponseWriter, req *http.Request) {
	health := map[string]storage.HealthData{}
	if h.svc.Health != nil {
		health = h.svc.Health.GetAllHealth()
	}
	h.write(w, req, health)
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, data any) {
	if err := h.formatter.WriteResponse(w, req, data, map[string]string{"Cache-Control": "no-store"}); err != nil {
		log.Errorf("error encoding response for %s: %v", req.URL.Path, err)
	}
}

// location reads lat and lon, defaulting to the configured site.
func (h *Handlers) location(q url.Values) (solar.Location, error) {
	lat, err := floatParam(q, "lat", h.svc.Location.Latitude)
	if err != nil {
		return solar.Location{}, err
	}
	lon, err := floatParam(q, "lon", h.svc.Location.Longitude)
	if err != nil {
		return solar.Location{}, err
	}
	return solar.NewLocation(lat, lon)
}

func (h *Handlers) placeAndTime(q url.Values) (solar.Location, time.Time, error) {
	loc, err := h.location(q)
	if err != nil {
		return solar.Location{}, time.Time{}, err
	}
	t := time.Now().UTC()
	if s := q.Get("time"); s != "" {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return solar.Location{}, time.Time{}, fmt.Errorf("time must be RFC 3339: %v", err)
		}
	}
	return loc, t.UTC(), nil
}

func poseParam(q url.Values) (sim.PanelPose, error) {
	ns, err := floatParam(q, "ns", 0)
	if err != nil {
		return sim.PanelPose{}, err
	}
	ew, err := floatParam(q, "ew", 0)
	if err != nil {
		return sim.PanelPose{}, err
	}
	return sim.PanelPose{NS: ns, EW: ew}, nil
}

func floatParam(q url.Values, name string, def float64) (float64, error) {
	s := q.Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a finite number", name)
	}
	return v, nil
}

func (h *Handlers) fail(w http.ResponseWriter, req *http.Request, status int, msg string) {
	if err := h.formatter.WriteError(w, req, status, msg); err != nil {
		log.Errorf("error encoding error response for %s: %v", req.URL.Path, err)
	}
}
