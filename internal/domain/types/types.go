// Package types contains the JSON wire types of the analysis service and
// their conversions to and from the domain model.
package types

import (
	"time"

	"github.com/okian/volley/internal/domain/model"
)

// FrameRequest is one sampled frame. The frame number comes from Frame, or
// is parsed from Name ("frame_0012.jpg"), or is the position in the request.
type FrameRequest struct {
	Frame     *int             `json:"frame,omitempty" validate:"omitempty,gte=0"`
	Name      string           `json:"name,omitempty" validate:"max=256"`
	Timestamp *float64         `json:"timestamp_sec,omitempty" validate:"omitempty,gte=0"`
	Keypoints []model.Landmark `json:"keypoints" validate:"max=33"`
}

// OutcomeRequest annotates the stroke in play at AtSec.
type OutcomeRequest struct {
	AtSec   float64 `json:"at_sec" validate:"gte=0"`
	Outcome string  `json:"outcome" validate:"required,oneof=winner error in_play"`
}

// SessionRequest is the body of POST /v1/analyze and POST /v1/sessions.
type SessionRequest struct {
	SessionID string              `json:"session_id,omitempty" validate:"omitempty,max=128"`
	FPS       float64             `json:"fps" validate:"gt=0,lte=1000"`
	Type      string              `json:"session_type,omitempty" default:"match" validate:"oneof=match practice serve"`
	View      string              `json:"camera_view,omitempty" default:"back" validate:"oneof=back side"`
	Frames    []FrameRequest      `json:"frames" validate:"dive"`
	Ball      []model.BallSample  `json:"ball,omitempty"`
	Outcomes  []OutcomeRequest    `json:"outcomes,omitempty" validate:"dive"`
	Court     *model.CourtContext `json:"court,omitempty"`
}

// TimelineEntry is one stroke of the output timeline.
type TimelineEntry struct {
	ID         int     `json:"id"`
	Stroke     string  `json:"stroke"`
	StartSec   float64 `json:"start_sec"`
	EndSec     float64 `json:"end_sec"`
	Duration   float64 `json:"duration"`
	Confidence float64 `json:"confidence"`
	Technique  string  `json:"technique,omitempty"`
	PeakSec    float64 `json:"peak_sec"`
	PeakSpeed  float64 `json:"peak_speed"`
	Policy     string  `json:"policy,omitempty"`
	Zone       string  `json:"zone,omitempty"`
	Context    string  `json:"context,omitempty"`
	Direction  string  `json:"direction,omitempty"`
	Outcome    string  `json:"outcome,omitempty"`
	Refined    bool    `json:"refined,omitempty"`
	Original   string  `json:"original_stroke,omitempty"`
}

// MomentumPoint is one entry of the momentum chart.
type MomentumPoint struct {
	Time     float64 `json:"time"`
	Momentum float64 `json:"momentum"`
	RallyID  int     `json:"rally_id"`
	Pressure float64 `json:"pressure"`
}

// RallyEntry is one rally of the output.
type RallyEntry struct {
	ID        int     `json:"id"`
	StrokeIDs []int   `json:"stroke_ids"`
	StartSec  float64 `json:"start_sec"`
	EndSec    float64 `json:"end_sec"`
	Duration  float64 `json:"duration"`
	Pressure  float64 `json:"pressure"`
	Winner    string  `json:"winner"`
}

// SessionStats is the session/rally aggregation output.
type SessionStats struct {
	TotalRallies        int             `json:"total_rallies"`
	AverageLength       float64         `json:"average_length"`
	MedianLength        float64         `json:"median_length"`
	LongestRally        int             `json:"longest_rally"`
	ShortestRally       int             `json:"shortest_rally"`
	AverageDuration     float64         `json:"average_duration"`
	TotalPlayingTime    float64         `json:"total_playing_time"`
	AveragePressure     float64         `json:"average_pressure"`
	HighPressureRallies int             `json:"high_pressure_rallies"`
	PressurePerformance float64         `json:"pressure_performance"`
	MomentumChart       []MomentumPoint `json:"momentum_chart"`
}

// Summary is the session summary output.
type Summary struct {
	TotalStrokes      int            `json:"total_strokes"`
	StrokeCounts      map[string]int `json:"stroke_counts"`
	AverageConfidence float64        `json:"average_confidence"`
	Consistency       float64        `json:"consistency"`
	DominantDirection string         `json:"dominant_direction"`
	CourtCoverage     float64        `json:"court_coverage"`
	Insights          []string       `json:"insights"`
}

// Heatmap is the position heatmap output.
type Heatmap struct {
	Size     int     `json:"size"`
	Grid     [][]int `json:"grid"`
	Total    int     `json:"total_positions"`
	Coverage float64 `json:"court_coverage"`
}

// ServeGroup summarises first or second serves.
type ServeGroup struct {
	Count        int     `json:"count"`
	AverageSpeed float64 `json:"avg_speed"`
}

// ServeStats is the serve analysis output.
type ServeStats struct {
	Count             int        `json:"count"`
	SpeedMean         float64    `json:"speed_mean"`
	SpeedMax          float64    `json:"speed_max"`
	SpeedMin          float64    `json:"speed_min"`
	SpeedStd          float64    `json:"speed_std"`
	DurationMean      float64    `json:"duration_mean"`
	First             ServeGroup `json:"first_serve"`
	Second            ServeGroup `json:"second_serve"`
	AverageInterval   float64    `json:"average_interval"`
	RhythmConsistency float64    `json:"rhythm_consistency"`
	Rhythm            Rhythm     `json:"rhythm"`
	Placement         Placement  `json:"placement"`
	Toss              Toss       `json:"toss"`
	Insights          []string   `json:"insights"`
}

// Rhythm buckets the time between serves.
type Rhythm struct {
	Quick     int    `json:"quick_serves"`
	Normal    int    `json:"normal_serves"`
	Slow      int    `json:"slow_serves"`
	Preferred string `json:"preferred_rhythm,omitempty"`
}

// ServeLanding is the zone of one serve.
type ServeLanding struct {
	StrokeID int     `json:"stroke_id"`
	Zone     string  `json:"zone"`
	Speed    float64 `json:"speed"`
}

// Placement is the serve placement output.
type Placement struct {
	Serves          []ServeLanding     `json:"serves"`
	Distribution    map[string]int     `json:"distribution"`
	Percentages     map[string]float64 `json:"percentages"`
	ZoneConsistency map[string]float64 `json:"zone_consistency"`
	Consistency     float64            `json:"overall_consistency"`
}

// TossReading is the toss of one serve.
type TossReading struct {
	StrokeID int     `json:"stroke_id"`
	ApexSec  float64 `json:"apex_sec"`
	Height   float64 `json:"height"`
	Timing   float64 `json:"timing"`
	Score    float64 `json:"technique_score"`
}

// Toss is the serve toss output.
type Toss struct {
	Readings          []TossReading `json:"readings"`
	HeightMean        float64       `json:"height_mean"`
	HeightStd         float64       `json:"height_std"`
	HeightConsistency float64       `json:"height_consistency"`
	TimingMean        float64       `json:"timing_mean"`
	TimingStd         float64       `json:"timing_std"`
	TimingConsistency float64       `json:"timing_consistency"`
	TechniqueScore    float64       `json:"technique_score"`
	Rating            string        `json:"consistency_rating,omitempty"`
	Recommendations   []string      `json:"recommendations"`
}

// StrokeTechnique is the body geometry of one stroke.
type StrokeTechnique struct {
	StrokeID         int      `json:"stroke_id"`
	Stroke           string   `json:"stroke"`
	Analyzed         bool     `json:"analyzed"`
	ShoulderRotation float64  `json:"shoulder_rotation,omitempty"`
	ElbowHeight      float64  `json:"elbow_height,omitempty"`
	HipRotation      float64  `json:"hip_rotation,omitempty"`
	PostureScore     int      `json:"posture_score,omitempty"`
	StrokeWidth      float64  `json:"stroke_width,omitempty"`
	BalanceOffset    float64  `json:"balance_offset,omitempty"`
	WristSeparation  float64  `json:"wrist_separation,omitempty"`
	BalanceScore     int      `json:"balance_score,omitempty"`
	Feedback         []string `json:"feedback"`
}

// Technique is the technique analysis output.
type Technique struct {
	View        string            `json:"camera_view"`
	Strokes     []StrokeTechnique `json:"strokes"`
	Breakdown   map[string]int    `json:"stroke_breakdown"`
	TopFeedback []string          `json:"top_feedback"`
}

// TennisIQ is the overall rating output.
type TennisIQ struct {
	Technical    float64  `json:"technical_skill"`
	Tactical     float64  `json:"tactical_intelligence"`
	Mental       float64  `json:"mental_toughness"`
	Physical     float64  `json:"physical_attributes"`
	Match        float64  `json:"match_intelligence"`
	Total        float64  `json:"total_iq"`
	Level        string   `json:"level"`
	NextLevel    string   `json:"next_level,omitempty"`
	ProPercent   float64  `json:"pro_percentage"`
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`
	Improvements []string `json:"improvement_areas"`
}

// Pattern describes how one stroke type is played.
type Pattern struct {
	Count               int     `json:"count"`
	DirectionPreference string  `json:"direction_preference"`
	AverageSpeed        float64 `json:"average_speed"`
}

// Shots is the shot direction analysis output.
type Shots struct {
	Distribution map[string]int     `json:"distribution"`
	MostCommon   string             `json:"most_common"`
	Patterns     map[string]Pattern `json:"stroke_patterns"`
	Insights     []string           `json:"tactical_insights"`
}

// AnalysisResponse is the full result of one session analysis.
type AnalysisResponse struct {
	SessionID    string          `json:"session_id"`
	FPS          float64         `json:"fps"`
	FramesTotal  int             `json:"frames_total"`
	FramesUsable int             `json:"frames_usable"`
	Reason       string          `json:"reason,omitempty"`
	Timeline     []TimelineEntry `json:"timeline"`
	Rallies      []RallyEntry    `json:"rallies"`
	Session      SessionStats    `json:"session"`
	Summary      Summary         `json:"summary"`
	Heatmap      Heatmap         `json:"heatmap"`
	Serves       ServeStats      `json:"serves"`
	Shots        Shots           `json:"shots"`
	Technique    Technique       `json:"technique"`
	IQ           TennisIQ        `json:"tennis_iq"`
	ElapsedMS    float64         `json:"elapsed_ms"`
}

// SubmitResponse acknowledges an asynchronous submission.
type SubmitResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// SessionStatus is the state of an asynchronously analysed session.
type SessionStatus struct {
	SessionID   string            `json:"session_id"`
	Status      string            `json:"status"`
	SubmittedAt time.Time         `json:"submitted_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Error       string            `json:"error,omitempty"`
	Result      *AnalysisResponse `json:"result,omitempty"`
}
