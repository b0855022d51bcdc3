// Package service implements device registration, trust verification, and
// the admin lifecycle transitions.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mssola/useragent"

	"hadir/internal/audit"
	"hadir/internal/device"
	"hadir/internal/device/metrics"
	"hadir/internal/device/store"
	"hadir/internal/notify"
	"hadir/internal/user"
	id "hadir/pkg/domain"
	dErrors "hadir/pkg/domain-errors"
	"hadir/pkg/platform/sentinel"
	"hadir/pkg/requestcontext"
)

// Notifier delivers notifications. Implemented by the notify service.
type Notifier interface {
	Send(ctx context.Context, userID id.UserID, typ notify.Type, title, body string, meta map[string]string)
	NotifyOverseers(ctx context.Context, managerID id.UserID, typ notify.Type, title, body string, meta map[string]string)
}

type Service struct {
	store      store.Store
	audit      *audit.Publisher
	notifier   Notifier
	metrics    *metrics.Metrics
	maxDevices int
	logger     *slog.Logger
}

func New(st store.Store, auditPub *audit.Publisher, notifier Notifier, m *metrics.Metrics, maxDevices int, logger *slog.Logger) *Service {
	return &Service{
		store:      st,
		audit:      auditPub,
		notifier:   notifier,
		metrics:    m,
		maxDevices: maxDevices,
		logger:     logger,
	}
}

// Register binds a device to the user. Re-registering a known deviceId
// refreshes its metadata instead of creating a new row. The first device a
// user ever registers activates immediately and becomes main; later devices
// wait as PENDING for admin approval. Active plus pending devices are capped.
func (s *Service) Register(ctx context.Context, u user.User, desc device.Descriptor) (device.RegisteredDevice, error) {
	if desc.DeviceID == "" {
		return device.RegisteredDevice{}, dErrors.New(dErrors.CodeValidation, "deviceId is required")
	}
	fingerprint := device.Fingerprint(desc)

	existing, err := s.store.FindByUserAndDeviceID(ctx, u.ID, desc.DeviceID)
	if err == nil {
		return s.refresh(ctx, existing, desc, fingerprint)
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return device.RegisteredDevice{}, dErrors.Wrap(err, dErrors.CodeInternal, "look up device")
	}

	countable := []device.Status{device.StatusPending, device.StatusActive}
	n, err := s.store.CountInStatuses(ctx, u.ID, countable)
	if err != nil {
		return device.RegisteredDevice{}, dErrors.Wrap(err, dErrors.CodeInternal, "count devices")
	}
	if n >= s.maxDevices {
		s.metrics.IncrementCapacityRejected()
		return device.RegisteredDevice{}, dErrors.Newf(dErrors.CodeCapacity,
			"device limit reached (%d active or pending devices allowed)", s.maxDevices)
	}

	d := device.RegisteredDevice{
		ID:          id.NewDeviceID(),
		UserID:      u.ID,
		DeviceID:    desc.DeviceID,
		Fingerprint: fingerprint,
		Name:        displayName(ctx, desc),
		Model:       desc.Model,
		Brand:       desc.Brand,
		Platform:    platformOrUnknown(desc.Platform),
		OSVersion:   desc.OSVersion,
		AppVersion:  desc.AppVersion,
		CreatedAt:   requestcontext.Now(ctx),
	}
	if n == 0 {
		d.Status = device.StatusActive
		d.IsMain = true
	} else {
		d.Status = device.StatusPending
	}

	err = s.store.Create(ctx, d)
	if errors.Is(err, sentinel.ErrConflict) {
		// Lost a race with a duplicate registration; fall back to refresh.
		existing, ferr := s.store.FindByUserAndDeviceID(ctx, u.ID, desc.DeviceID)
		if ferr != nil {
			return device.RegisteredDevice{}, dErrors.Wrap(ferr, dErrors.CodeInternal, "look up device")
		}
		return s.refresh(ctx, existing, desc, fingerprint)
	}
	if err != nil {
		return device.RegisteredDevice{}, dErrors.Wrap(err, dErrors.CodeInternal, "create device")
	}

	s.metrics.IncrementRegistered()
	s.audit.DeviceAccess(ctx, audit.DeviceAccessEntry{
		UserID:            u.ID,
		DeviceRowID:       d.ID,
		AttemptedDeviceID: d.DeviceID,
		Action:            audit.ActionRegister,
		Success:           true,
		KnownDevice:       false,
		ClientIP:          requestcontext.ClientIP(ctx),
	})

	if d.Status == device.StatusPending {
		s.notifier.NotifyOverseers(ctx, u.ManagerID, notify.TypeDeviceRegistered,
			"Device pending approval",
			fmt.Sprintf("%s registered a new device (%s) awaiting approval", u.FullName(), d.Name),
			map[string]string{"device_row_id": d.ID.String(), "user_id": u.ID.String()})
	}
	return d, nil
}

func (s *Service) refresh(ctx context.Context, d device.RegisteredDevice, desc device.Descriptor, fingerprint string) (device.RegisteredDevice, error) {
	d.Fingerprint = fingerprint
	if desc.Name != "" {
		d.Name = desc.Name
	}
	d.Model = desc.Model
	d.Brand = desc.Brand
	d.Platform = platformOrUnknown(desc.Platform)
	d.OSVersion = desc.OSVersion
	d.AppVersion = desc.AppVersion
	d.UsageCount++
	if err := s.store.Update(ctx, d); err != nil {
		return device.RegisteredDevice{}, dErrors.Wrap(err, dErrors.CodeInternal, "update device")
	}
	return d, nil
}

// Verify determines whether the claimed device may act for the user. Every
// attempt is appended to the device access log regardless of outcome.
func (s *Service) Verify(ctx context.Context, u user.User, deviceID, fingerprint string, action audit.DeviceAction) (device.Verification, error) {
	devices, err := s.store.ListByUser(ctx, u.ID)
	if err != nil {
		return device.Verification{}, dErrors.Wrap(err, dErrors.CodeInternal, "list devices")
	}

	entry := audit.DeviceAccessEntry{
		UserID:            u.ID,
		AttemptedDeviceID: deviceID,
		Action:            action,
		ClientIP:          requestcontext.ClientIP(ctx),
	}

	// Bootstrap: a user with no registered devices is trusted once so the
	// first check-in can register the device it came from.
	if len(devices) == 0 {
		entry.Success = true
		s.audit.DeviceAccess(ctx, entry)
		s.metrics.IncrementVerify("bootstrap")
		return device.Verification{Verified: true, RequiresRegistration: true}, nil
	}

	var match *device.RegisteredDevice
	for i := range devices {
		if devices[i].DeviceID == deviceID {
			match = &devices[i]
			break
		}
	}

	if match == nil || match.Status != device.StatusActive {
		reason := device.ReasonUnknownDevice
		if match != nil {
			entry.KnownDevice = true
			entry.DeviceRowID = match.ID
			if match.Status == device.StatusBlocked {
				reason = device.ReasonDeviceBlocked
			}
		}
		entry.FailureReason = string(reason)
		s.audit.DeviceAccess(ctx, entry)
		s.metrics.IncrementVerify("rejected")
		s.notifier.NotifyOverseers(ctx, u.ManagerID, notify.TypeSuspiciousAttempt,
			"Unrecognized device",
			fmt.Sprintf("%s attempted %s from an unapproved device", u.FullName(), action),
			map[string]string{"device_id": deviceID, "user_id": u.ID.String()})
		return device.Verification{Verified: false, Reason: reason, Device: match}, nil
	}

	// Fingerprint comparison is exact string equality.
	if fingerprint != "" && fingerprint != match.Fingerprint {
		entry.KnownDevice = true
		entry.DeviceRowID = match.ID
		entry.FailureReason = string(device.ReasonFingerprintMismatch)
		s.audit.DeviceAccess(ctx, entry)
		s.metrics.IncrementVerify("fingerprint_mismatch")
		s.notifier.NotifyOverseers(ctx, u.ManagerID, notify.TypeSuspiciousAttempt,
			"Device fingerprint mismatch",
			fmt.Sprintf("%s's device %s reported a changed fingerprint (possible tampering)", u.FullName(), match.Name),
			map[string]string{"device_id": deviceID, "user_id": u.ID.String()})
		return device.Verification{Verified: false, Reason: device.ReasonFingerprintMismatch, Device: match}, nil
	}

	entry.Success = true
	entry.KnownDevice = true
	entry.DeviceRowID = match.ID
	s.audit.DeviceAccess(ctx, entry)
	s.metrics.IncrementVerify("verified")
	if err := s.store.RecordUsage(ctx, match.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to record device usage",
			"device_row_id", match.ID, "error", err)
	}
	return device.Verification{Verified: true, Device: match}, nil
}

// Approve activates a pending device. With makeMain set, the previous main
// device is retired (device-change workflow: old device INACTIVE, new device
// ACTIVE and main).
func (s *Service) Approve(ctx context.Context, adminID id.UserID, rowID id.DeviceID, makeMain bool) (device.RegisteredDevice, error) {
	d, err := s.find(ctx, rowID)
	if err != nil {
		return device.RegisteredDevice{}, err
	}
	if d.Status != device.StatusPending {
		return device.RegisteredDevice{}, dErrors.Newf(dErrors.CodeConflict,
			"device is %s, only pending devices can be approved", d.Status)
	}

	d.Status = device.StatusActive
	d.ApprovedBy = adminID
	d.ApprovedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, d); err != nil {
		return device.RegisteredDevice{}, dErrors.Wrap(err, dErrors.CodeInternal, "approve device")
	}

	if makeMain {
		if err := s.retireCurrentMain(ctx, d.UserID, d.ID); err != nil {
			return device.RegisteredDevice{}, err
		}
		if err := s.store.SetMain(ctx, d.UserID, d.ID); err != nil {
			return device.RegisteredDevice{}, dErrors.Wrap(err, dErrors.CodeInternal, "set main device")
		}
		d.IsMain = true
	}

	s.notifier.Send(ctx, d.UserID, notify.TypeDeviceApproved,
		"Device approved",
		fmt.Sprintf("Your device %s has been approved and is now active", d.Name),
		map[string]string{"device_row_id": d.ID.String()})
	return d, nil
}

func (s *Service) retireCurrentMain(ctx context.Context, userID id.UserID, exceptRowID id.DeviceID) error {
	devices, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "list devices")
	}
	for _, d := range devices {
		if d.IsMain && d.ID != exceptRowID {
			d.IsMain = false
			d.Status = device.StatusInactive
			if err := s.store.Update(ctx, d); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "retire previous main device")
			}
		}
	}
	return nil
}

// Block puts a device out of service in any state. Blocking clears the main
// flag; a blocked device can never become main again.
func (s *Service) Block(ctx context.Context, adminID id.UserID, rowID id.DeviceID, reason string) (device.RegisteredDevice, error) {
	d, err := s.find(ctx, rowID)
	if err != nil {
		return device.RegisteredDevice{}, err
	}
	d.Status = device.StatusBlocked
	d.IsMain = false
	d.BlockedReason = reason
	d.ApprovedBy = adminID
	if err := s.store.Update(ctx, d); err != nil {
		return device.RegisteredDevice{}, dErrors.Wrap(err, dErrors.CodeInternal, "block device")
	}
	s.notifier.Send(ctx, d.UserID, notify.TypeDeviceBlocked,
		"Device blocked",
		fmt.Sprintf("Your device %s has been blocked: %s", d.Name, reason),
		map[string]string{"device_row_id": d.ID.String()})
	return d, nil
}

// SetMain atomically reassigns the main flag. The target must be ACTIVE.
func (s *Service) SetMain(ctx context.Context, userID id.UserID, rowID id.DeviceID) error {
	d, err := s.find(ctx, rowID)
	if err != nil {
		return err
	}
	if d.UserID != userID {
		return dErrors.New(dErrors.CodeNotFound, "device not found")
	}
	if d.Status != device.StatusActive {
		return dErrors.Newf(dErrors.CodeConflict, "device is %s, only active devices can be main", d.Status)
	}
	if err := s.store.SetMain(ctx, userID, rowID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "set main device")
	}
	return nil
}

// Remove deletes a user's own device binding.
func (s *Service) Remove(ctx context.Context, userID id.UserID, rowID id.DeviceID) error {
	d, err := s.find(ctx, rowID)
	if err != nil {
		return err
	}
	if d.UserID != userID {
		return dErrors.New(dErrors.CodeNotFound, "device not found")
	}
	if err := s.store.Delete(ctx, rowID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete device")
	}
	return nil
}

// List returns the user's devices, oldest first.
func (s *Service) List(ctx context.Context, userID id.UserID) ([]device.RegisteredDevice, error) {
	out, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list devices")
	}
	return out, nil
}

func (s *Service) find(ctx context.Context, rowID id.DeviceID) (device.RegisteredDevice, error) {
	d, err := s.store.FindByRowID(ctx, rowID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return device.RegisteredDevice{}, dErrors.New(dErrors.CodeNotFound, "device not found")
	}
	if err != nil {
		return device.RegisteredDevice{}, dErrors.Wrap(err, dErrors.CodeInternal, "load device")
	}
	return d, nil
}

// displayName prefers the client-supplied name, then brand and model, then
// the browser/OS parsed out of the User-Agent header.
func displayName(ctx context.Context, desc device.Descriptor) string {
	if desc.Name != "" {
		return desc.Name
	}
	if desc.Brand != "" || desc.Model != "" {
		return strings.TrimSpace(desc.Brand + " " + desc.Model)
	}
	if ua := requestcontext.UserAgent(ctx); ua != "" {
		parsed := useragent.New(ua)
		name, _ := parsed.Browser()
		if os := parsed.OS(); os != "" {
			return strings.TrimSpace(name + " on " + os)
		}
		if name != "" {
			return name
		}
	}
	return "Unknown device"
}

func platformOrUnknown(p string) string {
	if p == "" {
		return "UNKNOWN"
	}
	return p
}
