package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/repository"
)

func newTestVisitorService() (VisitorService, *repository.MemoryVisitorRepository, *recordingPublisher, *fakeClock) {
	repo := repository.NewMemoryVisitorRepository()
	pub := &recordingPublisher{}
	clock := newFakeClock()
	svc := NewVisitorService(repo, pub, &VisitorServiceConfig{PassValidity: 24 * time.Hour, Clock: clock.Now})
	return svc, repo, pub, clock
}

func TestVisitorService_Register(t *testing.T) {
	svc, _, pub, clock := newTestVisitorService()
	ctx := context.Background()

	v, err := svc.Register(ctx, residentActor, validRegistration())
	require.NoError(t, err)

	assert.Equal(t, domain.VisitorStatusPending, v.Status)
	assert.NotEmpty(t, v.QRCode)
	require.NotNil(t, v.ValidUntil)
	assert.Equal(t, clock.Now().Add(24*time.Hour), *v.ValidUntil)
	assert.Equal(t, domain.SourceManual, v.Source)
	assert.Equal(t, []domain.EventType{domain.EventVisitorRegistered}, pub.Types())
}

func TestVisitorService_Register_ResidentHostsOwnVisitor(t *testing.T) {
	svc, _, _, _ := newTestVisitorService()

	reg := validRegistration()
	reg.HostID = "someone-else"
	v, err := svc.Register(context.Background(), residentActor, reg)
	require.NoError(t, err)

	assert.Equal(t, residentActor.UserID, v.HostID)
	assert.Equal(t, "A-101", v.HostApartment)
	assert.Equal(t, "someone-else", reg.HostID, "caller's registration must not be modified")
}

func TestVisitorService_Register_SecurityNamesHost(t *testing.T) {
	svc, _, _, _ := newTestVisitorService()

	reg := validRegistration()
	reg.HostID = residentActor.UserID
	reg.HostName = residentActor.Name
	v, err := svc.Register(context.Background(), securityActor, reg)
	require.NoError(t, err)
	assert.Equal(t, residentActor.UserID, v.HostID)
}

func TestVisitorService_Register_Errors(t *testing.T) {
	tests := []struct {
		name    string
		actor   domain.Actor
		mutate  func(r *domain.VisitorRegistration)
		wantErr func(t *testing.T, err error)
	}{
		{
			name:  "visitor role cannot register",
			actor: visitorActor,
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrForbidden)
			},
		},
		{
			name:   "missing fields are all reported",
			actor:  residentActor,
			mutate: func(r *domain.VisitorRegistration) { r.Phone = ""; r.Email = "" },
			wantErr: func(t *testing.T, err error) {
				ve, ok := domain.AsValidationError(err)
				require.True(t, ok)
				assert.Contains(t, ve.Messages(), "Phone is required")
				assert.Contains(t, ve.Messages(), "Email is required")
			},
		},
		{
			name:   "bad date",
			actor:  residentActor,
			mutate: func(r *domain.VisitorRegistration) { r.VisitDate = "14/03/2025" },
			wantErr: func(t *testing.T, err error) {
				assert.True(t, domain.IsValidationError(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, pub, _ := newTestVisitorService()
			reg := validRegistration()
			if tt.mutate != nil {
				tt.mutate(reg)
			}
			v, err := svc.Register(context.Background(), tt.actor, reg)
			require.Error(t, err)
			assert.Nil(t, v)
			tt.wantErr(t, err)

			all, _ := repo.List(context.Background(), repository.VisitorFilter{})
			assert.Empty(t, all)
			assert.Empty(t, pub.Types())
		})
	}
}

func TestNewQRCode(t *testing.T) {
	now := time.UnixMilli(1710406800123)
	code := NewQRCode(now)
	assert.Regexp(t, regexp.MustCompile(`^QR1710406800123_[0-9A-F]{9}$`), code)
	assert.NotEqual(t, code, NewQRCode(now))
}

func TestVisitorService_Lifecycle(t *testing.T) {
	svc, _, pub, _ := newTestVisitorService()
	ctx := context.Background()

	v, err := svc.Register(ctx, residentActor, validRegistration())
	require.NoError(t, err)

	v, err = svc.Transition(ctx, residentActor, v.ID, domain.VisitorActionApprove)
	require.NoError(t, err)
	assert.Equal(t, domain.VisitorStatusApproved, v.Status)

	v, err = svc.Transition(ctx, securityActor, v.ID, domain.VisitorActionCheckIn)
	require.NoError(t, err)
	assert.Equal(t, domain.VisitorStatusCheckedIn, v.Status)
	assert.NotNil(t, v.CheckInTime)

	onSite, err := svc.CountOnSite(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, onSite)

	v, err = svc.Transition(ctx, securityActor, v.ID, domain.VisitorActionCheckOut)
	require.NoError(t, err)
	assert.Equal(t, domain.VisitorStatusCheckedOut, v.Status)
	assert.NotNil(t, v.CheckOutTime)

	assert.Equal(t, []domain.EventType{
		domain.EventVisitorRegistered,
		domain.EventVisitorApproved,
		domain.EventVisitorCheckedIn,
		domain.EventVisitorCheckedOut,
	}, pub.Types())
}

func TestVisitorService_CheckInPendingFails(t *testing.T) {
	svc, repo, _, _ := newTestVisitorService()
	ctx := context.Background()

	v, err := svc.Register(ctx, residentActor, validRegistration())
	require.NoError(t, err)

	_, err = svc.Transition(ctx, securityActor, v.ID, domain.VisitorActionCheckIn)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	stored, err := repo.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VisitorStatusPending, stored.Status)
	assert.Nil(t, stored.CheckInTime)
}

func TestVisitorService_Transition_Authorization(t *testing.T) {
	svc, _, _, _ := newTestVisitorService()
	ctx := context.Background()

	v, err := svc.Register(ctx, residentActor, validRegistration())
	require.NoError(t, err)

	_, err = svc.Transition(ctx, otherResident, v.ID, domain.VisitorActionApprove)
	assert.ErrorIs(t, err, domain.ErrForbidden, "residents approve only their own visitors")

	_, err = svc.Transition(ctx, residentActor, v.ID, domain.VisitorActionCheckIn)
	assert.ErrorIs(t, err, domain.ErrForbidden, "residents cannot operate the gate")

	_, err = svc.Transition(ctx, securityActor, v.ID, domain.VisitorAction("teleport"))
	assert.True(t, domain.IsValidationError(err))

	_, err = svc.Transition(ctx, adminActor, "missing", domain.VisitorActionApprove)
	assert.ErrorIs(t, err, domain.ErrVisitorNotFound)
}

func TestVisitorService_Blacklisted(t *testing.T) {
	svc, _, pub, _ := newTestVisitorService()
	ctx := context.Background()

	v, err := svc.Register(ctx, residentActor, validRegistration())
	require.NoError(t, err)

	_, err = svc.SetBlacklisted(ctx, residentActor, v.ID, true)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	v, err = svc.SetBlacklisted(ctx, securityActor, v.ID, true)
	require.NoError(t, err)
	assert.True(t, v.IsBlacklisted)
	assert.Contains(t, pub.Types(), domain.EventVisitorBlacklisted)

	_, err = svc.Transition(ctx, residentActor, v.ID, domain.VisitorActionApprove)
	assert.ErrorIs(t, err, domain.ErrVisitorBlacklisted)

	_, err = svc.SetBlacklisted(ctx, securityActor, v.ID, false)
	require.NoError(t, err)
	v, err = svc.Transition(ctx, residentActor, v.ID, domain.VisitorActionApprove)
	require.NoError(t, err)
	assert.Equal(t, domain.VisitorStatusApproved, v.Status)
}

func TestVisitorService_ExpiresStalePasses(t *testing.T) {
	svc, _, pub, clock := newTestVisitorService()
	ctx := context.Background()

	v, err := svc.Register(ctx, residentActor, validRegistration())
	require.NoError(t, err)
	_, err = svc.Transition(ctx, residentActor, v.ID, domain.VisitorActionApprove)
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)

	got, err := svc.Get(ctx, securityActor, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VisitorStatusExpired, got.Status)
	assert.Contains(t, pub.Types(), domain.EventVisitorExpired)

	_, err = svc.Transition(ctx, securityActor, v.ID, domain.VisitorActionCheckIn)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestVisitorService_ExpireStale(t *testing.T) {
	svc, _, _, clock := newTestVisitorService()
	ctx := context.Background()

	pending, err := svc.Register(ctx, residentActor, validRegistration())
	require.NoError(t, err)

	checkedIn, err := svc.Register(ctx, residentActor, validRegistration())
	require.NoError(t, err)
	_, err = svc.Transition(ctx, residentActor, checkedIn.ID, domain.VisitorActionApprove)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, securityActor, checkedIn.ID, domain.VisitorActionCheckIn)
	require.NoError(t, err)

	clock.Advance(48 * time.Hour)

	n, err := svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	onSite, err := svc.CountOnSite(ctx)
	require.NoError(t, err)
	assert.Zero(t, onSite)

	got, err := svc.Get(ctx, adminActor, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VisitorStatusPending, got.Status, "pending passes are never expired")
}

func TestVisitorService_GetByQRCode(t *testing.T) {
	svc, _, _, _ := newTestVisitorService()
	ctx := context.Background()

	v, err := svc.Register(ctx, residentActor, validRegistration())
	require.NoError(t, err)

	got, err := svc.GetByQRCode(ctx, securityActor, v.QRCode)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)

	_, err = svc.GetByQRCode(ctx, securityActor, "QR0_NOPE")
	assert.ErrorIs(t, err, domain.ErrVisitorNotFound)

	_, err = svc.GetByQRCode(ctx, visitorActor, v.QRCode)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestVisitorService_CheckZoneAccess(t *testing.T) {
	svc, _, _, _ := newTestVisitorService()
	ctx := context.Background()

	reg := validRegistration()
	reg.AccessZones = []string{"Lobby", "Pool"}
	v, err := svc.Register(ctx, residentActor, reg)
	require.NoError(t, err)

	ok, err := svc.CheckZoneAccess(ctx, securityActor, v.ID, "lobby")
	require.NoError(t, err)
	assert.False(t, ok, "not checked in yet")

	_, err = svc.Transition(ctx, residentActor, v.ID, domain.VisitorActionApprove)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, securityActor, v.ID, domain.VisitorActionCheckIn)
	require.NoError(t, err)

	ok, err = svc.CheckZoneAccess(ctx, securityActor, v.ID, "lobby")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CheckZoneAccess(ctx, securityActor, v.ID, "Gym")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVisitorService_BulkRegister(t *testing.T) {
	svc, repo, pub, _ := newTestVisitorService()
	ctx := context.Background()

	rows := make([]BulkRow, 0, 4)
	for i := 1; i <= 4; i++ {
		reg := validRegistration()
		if i == 3 {
			reg.Phone = ""
		}
		rows = append(rows, BulkRow{Row: i, Line: i + 1, Registration: reg})
	}

	result, err := svc.BulkRegister(ctx, residentActor, rows)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	assert.Len(t, result.Accepted, 3)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, 3, result.Rejected[0].Row)
	assert.Equal(t, 4, result.Rejected[0].Line)
	assert.Equal(t, []string{"Phone is required"}, result.Rejected[0].Errors)

	for _, v := range result.Accepted {
		assert.Equal(t, domain.SourceBulkImport, v.Source)
		assert.Equal(t, domain.VisitorStatusPending, v.Status)
	}

	all, err := repo.List(ctx, repository.VisitorFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Len(t, pub.Types(), 3)
}

func TestVisitorService_BulkRegister_Forbidden(t *testing.T) {
	svc, _, _, _ := newTestVisitorService()

	_, err := svc.BulkRegister(context.Background(), securityActor, []BulkRow{{Registration: validRegistration()}})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestVisitorService_PublishFailureDoesNotFailOperation(t *testing.T) {
	repo := repository.NewMemoryVisitorRepository()
	pub := &recordingPublisher{err: errBroker}
	svc := NewVisitorService(repo, pub, nil)

	v, err := svc.Register(context.Background(), residentActor, validRegistration())
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, stored.ID)
}
