package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Hold is a fixed point of contact on the wall. Coordinates are normalized to
// [0,1]x[0,1] with y=0 at the floor. Orientation is reserved and not
// consulted by scoring.
type Hold struct {
	ID          int     `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Orientation float64 `json:"orientation"`
	Size        float64 `json:"size"`
}

// Route is an ordered hold-key sequence, first-to-last = bottom-to-top. It
// references holds by id and must always be resolved against the board that
// produced it.
type Route struct {
	HoldIDs []int `json:"hold_ids"`
}

// StartHolds returns the first two hold ids, or the single first id for
// routes of length one.
func (r Route) StartHolds() []int {
	if len(r.HoldIDs) >= 2 {
		return append([]int(nil), r.HoldIDs[:2]...)
	}
	return append([]int(nil), r.HoldIDs...)
}

// TopHold returns the final hold id. The second result is false for empty
// routes.
func (r Route) TopHold() (int, bool) {
	if len(r.HoldIDs) == 0 {
		return 0, false
	}
	return r.HoldIDs[len(r.HoldIDs)-1], true
}

func (r Route) Len() int {
	return len(r.HoldIDs)
}

// Clone returns a route with an independent backing array. Breeding operates
// on clones only so a surviving parent is never aliased by an offspring.
func (r Route) Clone() Route {
	return Route{HoldIDs: append([]int(nil), r.HoldIDs...)}
}

// StyleParams is the closed set of tunable movement parameters resolved from
// user-facing style labels. DynamicWeight and AvgHoldSize are reserved: they
// are parsed and carried but not consumed by scoring.
type StyleParams struct {
	ReachMin        float64  `json:"reach_min"`
	ReachMax        float64  `json:"reach_max"`
	AvgMoveDist     float64  `json:"avg_move_dist"`
	VariancePenalty float64  `json:"variance_penalty"`
	DynamicWeight   float64  `json:"dynamic_weight"`
	AvgHoldSize     *float64 `json:"avg_hold_size,omitempty"`
}

// BoardRecord is the persistent form of a hold graph.
type BoardRecord struct {
	VersionedRecord
	Name  string `json:"name"`
	Holds []Hold `json:"holds"`
}

// Session is the persistent state of one interactive evolution session.
// Style holds the joined user-facing style keywords; the resolved
// StyleParams are re-derived from it on load.
type Session struct {
	VersionedRecord
	ID         string    `json:"id"`
	BoardName  string    `json:"board_name"`
	Difficulty float64   `json:"difficulty"`
	Style      string    `json:"style"`
	Generation int       `json:"generation"`
	Seed       int64     `json:"seed"`
	CreatedAt  time.Time `json:"created_at_utc"`
}

// PopulationSnapshot is the latest population of a session, replaced
// wholesale on every evolve step.
type PopulationSnapshot struct {
	VersionedRecord
	SessionID  string  `json:"session_id"`
	Generation int     `json:"generation"`
	Routes     []Route `json:"routes"`
}

// GenerationDiagnostics summarizes one scored generation.
type GenerationDiagnostics struct {
	Generation    int     `json:"generation"`
	BestScore     float64 `json:"best_score"`
	MeanScore     float64 `json:"mean_score"`
	MinScore      float64 `json:"min_score"`
	FavoriteCount int     `json:"favorite_count"`
	MeanLength    float64 `json:"mean_length"`
}
