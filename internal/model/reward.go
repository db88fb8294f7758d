package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type Reward struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CoinCost    int       `json:"coinCost"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

type RedemptionStatus string

const (
	RedemptionPending  RedemptionStatus = "PENDING"
	RedemptionApproved RedemptionStatus = "APPROVED"
	RedemptionRejected RedemptionStatus = "REJECTED"
)

func ParseRedemptionStatus(s string) (RedemptionStatus, error) {
	switch RedemptionStatus(s) {
	case RedemptionPending, RedemptionApproved, RedemptionRejected:
		return RedemptionStatus(s), nil
	}
	return "", fmt.Errorf("unknown redemption status: %q", s)
}

func (s *RedemptionStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseRedemptionStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type Redemption struct {
	ID              string           `json:"id"`
	Reward          Reward           `json:"reward"`
	ChildID         string           `json:"childId"`
	ChildName       string           `json:"childName"`
	Status          RedemptionStatus `json:"status"`
	RequestedAt     time.Time        `json:"requestedAt"`
	RejectionReason string           `json:"rejectionReason"`
}
