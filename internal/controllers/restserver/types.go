package restserver

import (
	"time"

	"github.com/chrissnell/suntracker/internal/experiment"
	"github.com/chrissnell/suntracker/internal/reward"
	"github.com/chrissnell/suntracker/internal/sim"
	"github.com/chrissnell/suntracker/pkg/solar"
)

type SunResponse struct {
	Time         time.Time         `json:"time"`
	Location     solar.Location    `json:"location"`
	Algorithm    string            `json:"algorithm"`
	Sun          solar.SunPosition `json:"sun"`
	AboveHorizon bool              `json:"above_horizon"`
	Daylight     bool              `json:"daylight"`
	Sunrise      string            `json:"sunrise_utc,omitempty"` // empty during polar day or night
	Sunset       string            `json:"sunset_utc,omitempty"`
}

type IrradianceResponse struct {
	Time       time.Time         `json:"time"`
	Location   solar.Location    `json:"location"`
	Sun        solar.SunPosition `json:"sun"`
	Pose       sim.PanelPose     `json:"pose"`
	Irradiance solar.Components  `json:"irradiance"` // W/m^2
	Tilt       solar.TiltFactors `json:"tilt"`
	// IncidenceDeg is the angle between the sun and the panel normal.
	IncidenceDeg float64 `json:"incidence_deg"`
	Flux         float64 `json:"flux"`  // W/m^2 on the panel
	Power        float64 `json:"power"` // W electrical
}

type RewardResponse struct {
	Location  solar.Location   `json:"location"`
	Action    string           `json:"action"`
	From      sim.PanelPose    `json:"from"`
	To        sim.PanelPose    `json:"to"`
	Mode      string           `json:"mode"`
	Units     string           `json:"units"`
	Breakdown reward.Breakdown `json:"breakdown"`
}

type DaylightResponse struct {
	Date               string         `json:"date"`
	Location           solar.Location `json:"location"`
	Sunrise            string         `json:"sunrise_utc,omitempty"`
	Sunset             string         `json:"sunset_utc,omitempty"`
	SunriseMinutes     int            `json:"sunrise_minutes"`
	SunsetMinutes      int            `json:"sunset_minutes"`
	Polar              bool           `json:"polar"`
	FlatInsolation     float64        `json:"flat_insolation_wh_m2"`
	TrackingInsolation float64        `json:"tracking_insolation_wh_m2"`
}

type ResultResponse struct {
	Result         *experiment.Result           `json:"result"`
	AxisComparison map[string]experiment.Series `json:"axis_comparison,omitempty"`
}
