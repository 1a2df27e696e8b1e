package model

import "time"

type ReportType string

const (
	ReportOverparking         ReportType = "OVERPARKING"
	ReportUnauthorizedParking ReportType = "UNAUTHORIZED_PARKING"
	ReportTicketFraud         ReportType = "TICKET_FRAUD"
	ReportOvercharging        ReportType = "OVERCHARGING"
	ReportOther               ReportType = "OTHER"
)

type ReportStatus string

const (
	ReportPending   ReportStatus = "PENDING"
	ReportResolved  ReportStatus = "RESOLVED"
	ReportDismissed ReportStatus = "DISMISSED"
)

// Report is a citizen complaint, optionally tied to a lot. Reports against
// a lot feed its risk score.
type Report struct {
	ID           string       `json:"id,omitempty"`
	ParkingLotID string       `json:"parkingLotId,omitempty"`
	UserID       string       `json:"userId,omitempty"`
	Type         ReportType   `json:"type"`
	Description  string       `json:"description,omitempty"`
	Status       ReportStatus `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
}

type ReportRequest struct {
	ParkingLotID string `json:"parkingLotId" validate:"omitempty,mongodb"`
	Type         string `json:"type" validate:"required,oneof=OVERPARKING UNAUTHORIZED_PARKING TICKET_FRAUD OVERCHARGING OTHER"`
	Description  string `json:"description" validate:"omitempty,max=1000"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskScore is the latest analysis of a lot. One document per lot, replaced
// on every run.
type RiskScore struct {
	ParkingLotID string    `json:"parkingLotId"`
	Score        int       `json:"score"`
	Level        RiskLevel `json:"level"`
	Reason       string    `json:"reason"`
	Factors      []string  `json:"factors"`
	AnalyzedAt   time.Time `json:"analyzedAt"`
}

func RiskLevelFor(score int) RiskLevel {
	switch {
	case score >= 70:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	default:
		return RiskLow
	}
}
