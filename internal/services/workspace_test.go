package services

import (
	"testing"

	"github.com/claridoc/backend/internal/models"
	"github.com/claridoc/backend/pkg/response"
)

func TestWorkspaceCreate_DefaultSwap(t *testing.T) {
	db := newTestDB(t)
	u1 := createTestUser(t, db, "u1@example.com")
	org := createTestOrg(t, db, "acme-corp", u1.ID)
	svc := NewWorkspaceService(db)

	legal, err := svc.Create(org.ID, &CreateWorkspaceRequest{
		Name:       "Legal",
		Visibility: models.VisibilityOrg,
		IsDefault:  true,
	}, u1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !legal.IsDefault {
		t.Error("Legal should be default")
	}

	scratch, err := svc.Create(org.ID, &CreateWorkspaceRequest{
		Name:       "Scratch",
		Visibility: models.VisibilityOrg,
		IsDefault:  true,
	}, u1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !scratch.IsDefault {
		t.Error("Scratch should be default")
	}

	// The previous default must have been unset in the same call.
	var reloaded models.Workspace
	if err := db.First(&reloaded, legal.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.IsDefault {
		t.Error("Legal.is_default should have flipped to false")
	}

	var defaults int64
	db.Model(&models.Workspace{}).Where("org_id = ? AND is_default = ?", org.ID, true).Count(&defaults)
	if defaults != 1 {
		t.Errorf("expected exactly one default workspace, got %d", defaults)
	}
}

func TestWorkspaceCreate_InvalidVisibility(t *testing.T) {
	db := newTestDB(t)
	u1 := createTestUser(t, db, "u1@example.com")
	org := createTestOrg(t, db, "acme", u1.ID)

	_, err := NewWorkspaceService(db).Create(org.ID, &CreateWorkspaceRequest{
		Name:       "Bad",
		Visibility: "public",
	}, u1.ID)
	assertCode(t, err, response.CodeValidation)
}

func TestWorkspaceCreate_CreatorBecomesOwner(t *testing.T) {
	db := newTestDB(t)
	u1 := createTestUser(t, db, "u1@example.com")
	org := createTestOrg(t, db, "acme", u1.ID)

	ws, err := NewWorkspaceService(db).Create(org.ID, &CreateWorkspaceRequest{
		Name:       "Legal",
		Visibility: models.VisibilityPrivate,
	}, u1.ID)
	if err != nil {
		t.Fatal(err)
	}

	var owner models.WorkspaceMembership
	if err := db.Where("workspace_id = ? AND user_id = ?", ws.ID, u1.ID).First(&owner).Error; err != nil {
		t.Fatal(err)
	}
	if owner.Role != models.WorkspaceRoleOwner {
		t.Errorf("creator role = %s, expected owner", owner.Role)
	}
	if owner.AddedBy != nil {
		t.Error("creator's added_by should be nil")
	}
}

func TestWorkspaceUpdate_DefaultSwap(t *testing.T) {
	db := newTestDB(t)
	u1 := createTestUser(t, db, "u1@example.com")
	org := createTestOrg(t, db, "acme", u1.ID)
	svc := NewWorkspaceService(db)

	a, _ := svc.Create(org.ID, &CreateWorkspaceRequest{Name: "A", Visibility: models.VisibilityOrg, IsDefault: true}, u1.ID)
	b, _ := svc.Create(org.ID, &CreateWorkspaceRequest{Name: "B", Visibility: models.VisibilityOrg}, u1.ID)

	makeDefault := true
	if _, err := svc.Update(b.ID, &UpdateWorkspaceRequest{IsDefault: &makeDefault}); err != nil {
		t.Fatal(err)
	}

	var ra, rb models.Workspace
	db.First(&ra, a.ID)
	db.First(&rb, b.ID)
	if ra.IsDefault {
		t.Error("A should no longer be default")
	}
	if !rb.IsDefault {
		t.Error("B should be default")
	}
}

func TestWorkspaceUpdate_PartialPatch(t *testing.T) {
	db := newTestDB(t)
	u1 := createTestUser(t, db, "u1@example.com")
	org := createTestOrg(t, db, "acme", u1.ID)
	svc := NewWorkspaceService(db)

	ws, _ := svc.Create(org.ID, &CreateWorkspaceRequest{
		Name:        "Legal",
		Description: "contracts",
		Visibility:  models.VisibilityOrg,
	}, u1.ID)

	newName := "Legal Docs"
	if _, err := svc.Update(ws.ID, &UpdateWorkspaceRequest{Name: &newName}); err != nil {
		t.Fatal(err)
	}

	var reloaded models.Workspace
	db.First(&reloaded, ws.ID)
	if reloaded.Name != "Legal Docs" {
		t.Errorf("name = %q, expected %q", reloaded.Name, "Legal Docs")
	}
	if reloaded.Description != "contracts" {
		t.Errorf("untouched field changed: description = %q", reloaded.Description)
	}
}

func TestWorkspaceArchive_Idempotent(t *testing.T) {
	db := newTestDB(t)
	u1 := createTestUser(t, db, "u1@example.com")
	org := createTestOrg(t, db, "acme", u1.ID)
	svc := NewWorkspaceService(db)

	ws, _ := svc.Create(org.ID, &CreateWorkspaceRequest{Name: "Legal", Visibility: models.VisibilityOrg}, u1.ID)

	if err := svc.Archive(ws.ID); err != nil {
		t.Fatal(err)
	}

	// Second archive fails: the row is invisible to live queries.
	assertCode(t, svc.Archive(ws.ID), response.CodeNotFound)

	_, err := svc.Get(ws.ID, u1.ID)
	assertCode(t, err, response.CodeNotFound)
}

func TestWorkspaceGet_Counts(t *testing.T) {
	db := newTestDB(t)
	u1 := createTestUser(t, db, "u1@example.com")
	org := createTestOrg(t, db, "acme", u1.ID)
	svc := NewWorkspaceService(db)

	ws, _ := svc.Create(org.ID, &CreateWorkspaceRequest{Name: "Legal", Visibility: models.VisibilityOrg}, u1.ID)

	docSvc := NewDocumentService(db)
	if _, err := docSvc.Share(ws.ID, &ShareDocumentRequest{DocumentID: "doc-1"}, u1.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := docSvc.Share(ws.ID, &ShareDocumentRequest{DocumentID: "doc-2"}, u1.ID); err != nil {
		t.Fatal(err)
	}

	detail, err := svc.Get(ws.ID, u1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if detail.EffectiveRole != models.WorkspaceRoleOwner {
		t.Errorf("effective role = %s, expected owner", detail.EffectiveRole)
	}
	if detail.MemberCount != 1 {
		t.Errorf("member count = %d, expected 1", detail.MemberCount)
	}
	if detail.DocumentCount != 2 {
		t.Errorf("document count = %d, expected 2", detail.DocumentCount)
	}
}

func TestWorkspaceList_VisibilityAndOrder(t *testing.T) {
	db := newTestDB(t)
	u1 := createTestUser(t, db, "u1@example.com")
	u2 := createTestUser(t, db, "u2@example.com")
	org := createTestOrg(t, db, "acme", u1.ID)
	if err := db.Create(&models.OrgMembership{OrgID: org.ID, UserID: u2.ID, Role: models.OrgRoleMember}).Error; err != nil {
		t.Fatal(err)
	}
	svc := NewWorkspaceService(db)

	shared, _ := svc.Create(org.ID, &CreateWorkspaceRequest{Name: "Shared", Visibility: models.VisibilityOrg}, u1.ID)
	hidden, _ := svc.Create(org.ID, &CreateWorkspaceRequest{Name: "Hidden", Visibility: models.VisibilityPrivate}, u1.ID)
	deflt, _ := svc.Create(org.ID, &CreateWorkspaceRequest{Name: "Default", Visibility: models.VisibilityOrg, IsDefault: true}, u1.ID)

	// u2 sees org-visible workspaces only, default first.
	list, err := svc.ListForOrg(org.ID, u2.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 workspaces for u2, got %d", len(list))
	}
	if list[0].ID != deflt.ID {
		t.Errorf("default workspace should sort first, got %s", list[0].Name)
	}
	for _, d := range list {
		if d.ID == hidden.ID {
			t.Error("private workspace leaked to non-member")
		}
		if d.EffectiveRole != models.WorkspaceRoleViewer {
			t.Errorf("u2 role on %s = %s, expected viewer", d.Name, d.EffectiveRole)
		}
	}

	// An explicit membership pulls the private workspace in.
	if _, err := NewWorkspaceMemberService(db).Add(hidden, &AddWorkspaceMemberRequest{
		UserID: u2.ID,
		Role:   models.WorkspaceRoleCommenter,
	}, u1.ID); err != nil {
		t.Fatal(err)
	}
	list, err = svc.ListForOrg(org.ID, u2.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 workspaces after explicit grant, got %d", len(list))
	}
	for _, d := range list {
		if d.ID == hidden.ID && d.EffectiveRole != models.WorkspaceRoleCommenter {
			t.Errorf("explicit role should win, got %s", d.EffectiveRole)
		}
		if d.ID == shared.ID && d.EffectiveRole != models.WorkspaceRoleViewer {
			t.Errorf("implicit viewer expected on %s, got %s", d.Name, d.EffectiveRole)
		}
	}
}
