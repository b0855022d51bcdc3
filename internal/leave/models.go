// Package leave manages leave requests and day-scoped work-from-home
// exemptions. Approved leave short-circuits attendance for the covered days;
// a WFH exemption only suspends the geofence gate.
package leave

import (
	"time"

	id "hadir/pkg/domain"
)

// Type classifies a leave request.
type Type string

const (
	TypeAnnual    Type = "ANNUAL"
	TypeSick      Type = "SICK"
	TypeUnpaid    Type = "UNPAID"
	TypeEmergency Type = "EMERGENCY"
)

// RequestStatus is the lifecycle state of a leave request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusApproved  RequestStatus = "APPROVED"
	StatusRejected  RequestStatus = "REJECTED"
	StatusCancelled RequestStatus = "CANCELLED"
)

// Request is one leave request covering an inclusive day range.
type Request struct {
	ID            id.LeaveID    `json:"id"`
	UserID        id.UserID     `json:"userId"`
	Type          Type          `json:"type"`
	StartDate     time.Time     `json:"startDate"`
	EndDate       time.Time     `json:"endDate"`
	Reason        string        `json:"reason,omitempty"`
	Status        RequestStatus `json:"status"`
	ApproverID    id.UserID     `json:"approverId,omitzero"`
	ApproverNotes string        `json:"approverNotes,omitempty"`
	DecidedAt     time.Time     `json:"decidedAt,omitzero"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Days returns every calendar day the request covers, inclusive.
func (r Request) Days() []time.Time {
	var out []time.Time
	for d := r.StartDate; !d.After(r.EndDate); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// WFHGrant marks one user as work-from-home for one day.
type WFHGrant struct {
	UserID     id.UserID `json:"userId"`
	Day        time.Time `json:"day"`
	Reason     string    `json:"reason,omitempty"`
	ApprovedBy id.UserID `json:"approvedBy,omitzero"`
	CreatedAt  time.Time `json:"createdAt"`
}
