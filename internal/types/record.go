// Package types holds the values passed between the experiment runner and
// the storage backends.
package types

import (
	"strconv"
	"time"
)

// Record is the reward an agent collected over one chunk of an episode.
// Energy columns are only filled when the run tracks an energy breakdown.
type Record struct {
	RunID      string    `gorm:"column:run_id" json:"run_id"`
	Time       time.Time `gorm:"column:time" json:"time"` // simulated UTC time at the start of the chunk
	Experiment string    `gorm:"column:experiment" json:"experiment"`
	Agent      string    `gorm:"column:agent" json:"agent"`
	DualAxis   bool      `gorm:"column:dual_axis" json:"dual_axis"`
	Latitude   float64   `gorm:"column:latitude" json:"latitude"`
	Longitude  float64   `gorm:"column:longitude" json:"longitude"`
	Instance   int       `gorm:"column:instance" json:"instance"`
	Episode    int       `gorm:"column:episode" json:"episode"`
	Chunk      int       `gorm:"column:chunk" json:"chunk"`
	Reward     float64   `gorm:"column:reward" json:"reward"`
	DirectWh   float64   `gorm:"column:direct_wh" json:"direct_wh"`
	DiffuseWh  float64   `gorm:"column:diffuse_wh" json:"diffuse_wh"`
	ReflectWh  float64   `gorm:"column:reflective_wh" json:"reflective_wh"`
	MotionWh   float64   `gorm:"column:motion_wh" json:"motion_wh"`
}

// TableName implements the GORM Tabler interface for the Record struct
func (Record) TableName() string {
	return "rewards"
}

// CSVHeader returns the column names matching CSVRow.
func CSVHeader() []string {
	return []string{
		"run_id", "time", "experiment", "agent", "dual_axis", "latitude", "longitude",
		"instance", "episode", "chunk", "reward", "direct_wh", "diffuse_wh", "reflective_wh", "motion_wh",
	}
}

// CSVRow formats r as one CSV row.
func (r Record) CSVRow() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return []string{
		r.RunID,
		r.Time.UTC().Format(time.RFC3339),
		r.Experiment,
		r.Agent,
		strconv.FormatBool(r.DualAxis),
		f(r.Latitude),
		f(r.Longitude),
		strconv.Itoa(r.Instance),
		strconv.Itoa(r.Episode),
		strconv.Itoa(r.Chunk),
		f(r.Reward),
		f(r.DirectWh),
		f(r.DiffuseWh),
		f(r.ReflectWh),
		f(r.MotionWh),
	}
}
