package services

import (
	"strings"
	"testing"
	"time"

	"github.com/claridoc/backend/internal/config"
	"github.com/claridoc/backend/internal/models"
	"github.com/claridoc/backend/internal/utils"
	"github.com/claridoc/backend/pkg/response"
	"gorm.io/gorm"
)

func newInvitationService(db *gorm.DB) *InvitationService {
	// SyncQueue without a processor drops tasks silently, which keeps
	// these tests free of SMTP concerns.
	return NewInvitationService(db, &config.AppConfig{BaseURL: "http://test.local"}, NewSyncQueue())
}

func TestInvitationCreate_TokenAndStorage(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	org := createTestOrg(t, db, "acme", admin.ID)
	svc := newInvitationService(db)

	result, err := svc.Create(org, &CreateInvitationRequest{
		Email: "  Carol@Example.COM ",
		Role:  models.OrgRoleMember,
	}, admin.ID)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Token) != 43 {
		t.Errorf("token length = %d, want 43", len(result.Token))
	}
	if result.EmailWarning != "" {
		t.Errorf("unexpected email warning: %s", result.EmailWarning)
	}

	var stored models.Invitation
	if err := db.First(&stored, result.Invitation.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Email != "carol@example.com" {
		t.Errorf("stored email not normalized: %s", stored.Email)
	}
	if stored.TokenHash != utils.HashToken(result.Token) {
		t.Error("stored hash does not match token digest")
	}
	if strings.Contains(stored.TokenHash, result.Token) {
		t.Error("plaintext token must not be stored")
	}
	if stored.Status != models.InvitationPending {
		t.Errorf("status = %s, want pending", stored.Status)
	}
	ttl := time.Until(stored.ExpiresAt)
	if ttl < 6*24*time.Hour || ttl > 7*24*time.Hour {
		t.Errorf("expiry outside expected window: %v", ttl)
	}
}

func TestInvitationCreate_InvalidRole(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	org := createTestOrg(t, db, "acme", admin.ID)

	_, err := newInvitationService(db).Create(org, &CreateInvitationRequest{
		Email: "carol@example.com",
		Role:  "superuser",
	}, admin.ID)
	assertCode(t, err, response.CodeValidation)
}

func TestInvitationCreate_DuplicatePending(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	org := createTestOrg(t, db, "acme", admin.ID)
	svc := newInvitationService(db)

	if _, err := svc.Create(org, &CreateInvitationRequest{Email: "carol@example.com", Role: models.OrgRoleMember}, admin.ID); err != nil {
		t.Fatal(err)
	}
	// Same address, different case: still a duplicate.
	_, err := svc.Create(org, &CreateInvitationRequest{Email: "CAROL@example.com", Role: models.OrgRoleViewer}, admin.ID)
	assertCode(t, err, response.CodeInvitationExists)
}

func TestInvitationCreate_ExistingMember(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	member := createTestUser(t, db, "member@example.com")
	org := createTestOrg(t, db, "acme", admin.ID)
	db.Create(&models.OrgMembership{OrgID: org.ID, UserID: member.ID, Role: models.OrgRoleMember})

	_, err := newInvitationService(db).Create(org, &CreateInvitationRequest{
		Email: "member@example.com",
		Role:  models.OrgRoleMember,
	}, admin.ID)
	assertCode(t, err, response.CodeAlreadyMember)
}

func TestInvitationCreate_SeatLimit(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	org := createTestOrg(t, db, "acme", admin.ID)
	svc := newInvitationService(db)

	// One seat, already held by the admin: members + pending >= limit.
	if err := db.Model(&models.Organization{}).Where("id = ?", org.ID).Update("seat_limit", 1).Error; err != nil {
		t.Fatal(err)
	}
	org.SeatLimit = 1

	_, err := svc.Create(org, &CreateInvitationRequest{Email: "carol@example.com", Role: models.OrgRoleMember}, admin.ID)
	assertCode(t, err, response.CodeSeatLimitReached)

	// Pending invitations count against the cap too.
	org.SeatLimit = 2
	db.Model(&models.Organization{}).Where("id = ?", org.ID).Update("seat_limit", 2)
	if _, err := svc.Create(org, &CreateInvitationRequest{Email: "carol@example.com", Role: models.OrgRoleMember}, admin.ID); err != nil {
		t.Fatal(err)
	}
	_, err = svc.Create(org, &CreateInvitationRequest{Email: "dave@example.com", Role: models.OrgRoleMember}, admin.ID)
	assertCode(t, err, response.CodeSeatLimitReached)
}

func TestInvitationGetByToken(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	org := createTestOrg(t, db, "acme", admin.ID)
	svc := newInvitationService(db)

	result, err := svc.Create(org, &CreateInvitationRequest{Email: "carol@example.com", Role: models.OrgRoleViewer}, admin.ID)
	if err != nil {
		t.Fatal(err)
	}

	view, err := svc.GetByToken(result.Token)
	if err != nil {
		t.Fatal(err)
	}
	if view.OrgName != org.Name {
		t.Errorf("org name = %s, want %s", view.OrgName, org.Name)
	}
	if view.Email != "carol@example.com" || view.Role != models.OrgRoleViewer {
		t.Errorf("unexpected view: %+v", view)
	}

	_, err = svc.GetByToken("not-a-real-token")
	assertCode(t, err, response.CodeInvitationNotFound)
}

func TestInvitationAccept(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	carol := createTestUser(t, db, "carol@example.com")
	org := createTestOrg(t, db, "acme", admin.ID)
	svc := newInvitationService(db)

	result, err := svc.Create(org, &CreateInvitationRequest{Email: "carol@example.com", Role: models.OrgRoleMember}, admin.ID)
	if err != nil {
		t.Fatal(err)
	}

	// A verified address that differs from the invited one is refused.
	mallory := createTestUser(t, db, "mallory@example.com")
	_, err = svc.Accept(result.Token, mallory.ID, "mallory@example.com")
	assertCode(t, err, response.CodeEmailMismatch)

	accepted, err := svc.Accept(result.Token, carol.ID, "Carol@Example.com")
	if err != nil {
		t.Fatal(err)
	}
	if accepted.OrgID != org.ID || accepted.Role != models.OrgRoleMember {
		t.Errorf("unexpected accept result: %+v", accepted)
	}

	var m models.OrgMembership
	if err := db.Where("org_id = ? AND user_id = ?", org.ID, carol.ID).First(&m).Error; err != nil {
		t.Fatal(err)
	}
	if m.Role != models.OrgRoleMember {
		t.Errorf("membership role = %s", m.Role)
	}

	var inv models.Invitation
	db.First(&inv, result.Invitation.ID)
	if inv.Status != models.InvitationAccepted || inv.AcceptedBy == nil || *inv.AcceptedBy != carol.ID {
		t.Errorf("invitation not marked accepted: %+v", inv)
	}

	// Single use: the consumed token is gone.
	_, err = svc.Accept(result.Token, carol.ID, "carol@example.com")
	assertCode(t, err, response.CodeInvitationNotFound)
}

func TestInvitationRevoke(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	org := createTestOrg(t, db, "acme", admin.ID)
	svc := newInvitationService(db)

	result, err := svc.Create(org, &CreateInvitationRequest{Email: "carol@example.com", Role: models.OrgRoleMember}, admin.ID)
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Revoke(org.ID, result.Invitation.ID); err != nil {
		t.Fatal(err)
	}

	// Revoked and unknown tokens answer identically.
	_, err = svc.GetByToken(result.Token)
	assertCode(t, err, response.CodeInvitationNotFound)

	assertCode(t, svc.Revoke(org.ID, result.Invitation.ID), response.CodeNotFound)
}

func TestInvitationRevoke_WrongOrg(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	org := createTestOrg(t, db, "acme", admin.ID)
	other := createTestOrg(t, db, "other", admin.ID)
	svc := newInvitationService(db)

	result, err := svc.Create(org, &CreateInvitationRequest{Email: "carol@example.com", Role: models.OrgRoleMember}, admin.ID)
	if err != nil {
		t.Fatal(err)
	}
	assertCode(t, svc.Revoke(other.ID, result.Invitation.ID), response.CodeNotFound)
}

func TestInvitationExpiry(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	carol := createTestUser(t, db, "carol@example.com")
	org := createTestOrg(t, db, "acme", admin.ID)
	svc := newInvitationService(db)

	result, err := svc.Create(org, &CreateInvitationRequest{Email: "carol@example.com", Role: models.OrgRoleMember}, admin.ID)
	if err != nil {
		t.Fatal(err)
	}

	// Expiry is lazy: push expires_at into the past without touching status.
	if err := db.Model(&models.Invitation{}).
		Where("id = ?", result.Invitation.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatal(err)
	}

	_, err = svc.GetByToken(result.Token)
	assertCode(t, err, response.CodeInvitationNotFound)

	_, err = svc.Accept(result.Token, carol.ID, "carol@example.com")
	assertCode(t, err, response.CodeInvitationNotFound)

	list, err := svc.List(org.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("expired invitation listed: %d rows", len(list))
	}

	// The expired slot frees up for a fresh invitation even though the
	// pending unique index is in place: issuing the new one retires
	// the stale row.
	fresh, err := svc.Create(org, &CreateInvitationRequest{Email: "carol@example.com", Role: models.OrgRoleMember}, admin.ID)
	if err != nil {
		t.Fatalf("re-invite after expiry should succeed: %v", err)
	}

	var old models.Invitation
	if err := db.First(&old, result.Invitation.ID).Error; err != nil {
		t.Fatal(err)
	}
	if old.Status != models.InvitationExpired {
		t.Errorf("stale row status = %s, want expired", old.Status)
	}
	var pending int64
	db.Model(&models.Invitation{}).
		Where("org_id = ? AND email = ? AND status = ?", org.ID, "carol@example.com", models.InvitationPending).
		Count(&pending)
	if pending != 1 {
		t.Errorf("pending rows for address = %d, want 1", pending)
	}

	// The fresh token works.
	if _, err := svc.GetByToken(fresh.Token); err != nil {
		t.Errorf("fresh token lookup failed: %v", err)
	}
}

func TestInvitationList(t *testing.T) {
	db := newTestDB(t)
	admin := createTestUser(t, db, "admin@example.com")
	org := createTestOrg(t, db, "acme", admin.ID)
	svc := newInvitationService(db)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		if _, err := svc.Create(org, &CreateInvitationRequest{Email: email, Role: models.OrgRoleMember}, admin.ID); err != nil {
			t.Fatal(err)
		}
	}
	result, err := svc.Create(org, &CreateInvitationRequest{Email: "c@example.com", Role: models.OrgRoleMember}, admin.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Revoke(org.ID, result.Invitation.ID); err != nil {
		t.Fatal(err)
	}

	list, err := svc.List(org.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("list returned %d rows, want 2", len(list))
	}
	for _, inv := range list {
		if inv.Status != models.InvitationPending {
			t.Errorf("non-pending invitation listed: %s", inv.Status)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"Carol@Example.COM":   "carol@example.com",
		"  a@b.com  ":         "a@b.com",
		"already@lower.case":  "already@lower.case",
		"\tTABBED@mail.com\n": "tabbed@mail.com",
	}
	for in, want := range cases {
		if got := NormalizeEmail(in); got != want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
