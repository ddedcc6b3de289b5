package gateway

import (
	"encoding/json"
	"time"
)

// LoginResponse is what POST /auth/login returns on success.
type LoginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

// LatestResults is the optional tail of a stats snapshot.
type LatestResults struct {
	SmoothedScore float64 `json:"smoothed_score"`
	Confidence    float64 `json:"confidence"`
	WeaponsCount  int     `json:"weapons_count"`
}

// LiveStats is one stats snapshot. Missing fields decode to zero values;
// nothing is validated client-side.
type LiveStats struct {
	FrameCount    int            `json:"frame_count"`
	CrimeCount    int            `json:"crime_count"`
	FPS           float64        `json:"fps"`
	Running       bool           `json:"running"`
	SourceType    string         `json:"source_type"`
	LatestResults *LatestResults `json:"latest_results,omitempty"`
}

// Threat returns latest_results.smoothed_score or 0.
func (s LiveStats) Threat() float64 {
	if s.LatestResults == nil {
		return 0
	}
	return s.LatestResults.SmoothedScore
}

// Confidence returns latest_results.confidence or 0.
func (s LiveStats) Confidence() float64 {
	if s.LatestResults == nil {
		return 0
	}
	return s.LatestResults.Confidence
}

// DualStats is the per-camera pair from GET /live/dual/stats.
type DualStats struct {
	Camera1 LiveStats `json:"camera_1"`
	Camera2 LiveStats `json:"camera_2"`
}

// frameResponse wraps GET /live/frame and /live/dual/frame/{n}. Frame is a
// self-contained displayable image reference (a data URI); empty means "no
// frame available this tick".
type frameResponse struct {
	Frame string `json:"frame"`
}

// rawAlert is an alert record as the backend emits it, before the console's
// display transform. weapons_count is absent on some records and has to be
// derived from detection_details or the weapons list.
type rawAlert struct {
	ID           string  `json:"id"`
	AlertID      string  `json:"alert_id"`
	ThreatScore  float64 `json:"threat_score"`
	Confidence   float64 `json:"confidence"`
	WeaponsCount int     `json:"weapons_count"`
	Timestamp    string  `json:"timestamp"`
	CameraID     int     `json:"camera_id"`

	DetectionDetails *struct {
		WeaponsDetected int `json:"weapons_detected"`
	} `json:"detection_details"`
	Weapons []json.RawMessage `json:"weapons"`
}

// Alert is the view-model shape every panel renders.
type Alert struct {
	ID           string  `json:"id"`
	AlertID      string  `json:"alert_id,omitempty"`
	ThreatScore  float64 `json:"threat_score"`
	Confidence   float64 `json:"confidence"`
	WeaponsCount int     `json:"weapons_count"`
	Timestamp    string  `json:"timestamp"`
	CameraID     int     `json:"camera_id,omitempty"`
}

// Key resolves the display identity: id, then alert_id, then "unknown".
// The weak fallback chain is deliberate; do not strengthen it.
func (a Alert) Key() string {
	if a.ID != "" {
		return a.ID
	}
	if a.AlertID != "" {
		return a.AlertID
	}
	return "unknown"
}

func (r rawAlert) toAlert() Alert {
	weapons := r.WeaponsCount
	if weapons == 0 {
		if r.DetectionDetails != nil {
			weapons = r.DetectionDetails.WeaponsDetected
		}
		if weapons == 0 {
			weapons = len(r.Weapons)
		}
	}
	ts := r.Timestamp
	if ts == "" {
		ts = time.Now().UTC().Format(time.RFC3339)
	}
	id := r.ID
	if id == "" {
		id = r.AlertID
	}
	return Alert{
		ID:           id,
		AlertID:      r.AlertID,
		ThreatScore:  r.ThreatScore,
		Confidence:   r.Confidence,
		WeaponsCount: weapons,
		Timestamp:    ts,
		CameraID:     r.CameraID,
	}
}

// VerifiedAlert is a row from GET /alerts/verified.
type VerifiedAlert struct {
	ID         string `json:"id"`
	AlertID    string `json:"alert_id"`
	VerifiedBy string `json:"verified_by"`
	VerifiedAt string `json:"verified_at"`
	IsValid    int    `json:"is_valid"`
}

// SettingsPayload is the full object POSTed to /live/settings. Sensitivity is
// UI-only and intentionally has no field here.
type SettingsPayload struct {
	FPSTarget      int     `json:"fps_target"`
	CrimeThreshold float64 `json:"crime_threshold"`
	ShowBoxes      bool    `json:"show_boxes"`
	ShowWeapons    bool    `json:"show_weapons"`
}

// decodeAlertEnvelope accepts the three list shapes the backend has been seen
// to produce: a bare array, {"alerts":[...]}, and {"data":[...]}.
func decodeAlertEnvelope(data []byte) ([]rawAlert, error) {
	var list []rawAlert
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var envelope struct {
		Alerts []rawAlert `json:"alerts"`
		Data   []rawAlert `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	if envelope.Alerts != nil {
		return envelope.Alerts, nil
	}
	return envelope.Data, nil
}

func decodeVerifiedEnvelope(data []byte) ([]VerifiedAlert, error) {
	var list []VerifiedAlert
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var envelope struct {
		Data []VerifiedAlert `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}
