package services

import (
	"testing"

	"github.com/claridoc/backend/internal/models"
	"github.com/claridoc/backend/pkg/response"
)

func TestWorkspaceMemberAdd_RequiresOrgMembership(t *testing.T) {
	db := newTestDB(t)
	u1 := createTestUser(t, db, "u1@example.com")
	stranger := createTestUser(t, db, "stranger@example.com")
	org := createTestOrg(t, db, "acme", u1.ID)

	ws, _ := NewWorkspaceService(db).Create(org.ID, &CreateWorkspaceRequest{
		Name:       "Legal",
		Visibility: models.VisibilityPrivate,
	}, u1.ID)

	_, err := NewWorkspaceMemberService(db).Add(ws, &AddWorkspaceMemberRequest{
		UserID: stranger.ID,
		Role:   models.WorkspaceRoleEditor,
	}, u1.ID)
	assertCode(t, err, response.CodeValidation)
}

func TestWorkspaceMemberAdd_Duplicate(t *testing.T) {
	db := newTestDB(t)
	u1 := createTestUser(t, db, "u1@example.com")
	u2 := createTestUser(t, db, "u2@example.com")
	org := createTestOrg(t, db, "acme", u1.ID)
	db.Create(&models.OrgMembership{OrgID: org.ID, UserID: u2.ID, Role: models.OrgRoleMember})

	ws, _ := NewWorkspaceService(db).Create(org.ID, &CreateWorkspaceRequest{
		Name:       "Legal",
		Visibility: models.VisibilityPrivate,
	}, u1.ID)
	svc := NewWorkspaceMemberService(db)

	member, err := svc.Add(ws, &AddWorkspaceMemberRequest{UserID: u2.ID, Role: models.WorkspaceRoleEditor}, u1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if member.AddedBy == nil || *member.AddedBy != u1.ID {
		t.Error("added_by should record the granting user")
	}

	_, err = svc.Add(ws, &AddWorkspaceMemberRequest{UserID: u2.ID, Role: models.WorkspaceRoleViewer}, u1.ID)
	assertCode(t, err, response.CodeAlreadyMember)
}

func TestWorkspaceMemberRemove_LastOwner(t *testing.T) {
	db := newTestDB(t)
	u1 := createTestUser(t, db, "u1@example.com")
	org := createTestOrg(t, db, "acme", u1.ID)

	ws, _ := NewWorkspaceService(db).Create(org.ID, &CreateWorkspaceRequest{
		Name:       "Legal",
		Visibility: models.VisibilityOrg,
	}, u1.ID)
	svc := NewWorkspaceMemberService(db)

	// Sole owner removing themselves is refused.
	assertCode(t, svc.Remove(ws.ID, u1.ID), response.CodeLastOwner)

	var owners int64
	db.Model(&models.WorkspaceMembership{}).
		Where("workspace_id = ? AND role = ?", ws.ID, models.WorkspaceRoleOwner).
		Count(&owners)
	if owners != 1 {
		t.Errorf("owner count changed: %d", owners)
	}
}

func TestWorkspaceMemberRemove_WithSecondOwner(t *testing.T) {
	db := newTestDB(t)
	u1 := createTestUser(t, db, "u1@example.com")
	u2 := createTestUser(t, db, "u2@example.com")
	org := createTestOrg(t, db, "acme", u1.ID)
	db.Create(&models.OrgMembership{OrgID: org.ID, UserID: u2.ID, Role: models.OrgRoleMember})

	ws, _ := NewWorkspaceService(db).Create(org.ID, &CreateWorkspaceRequest{
		Name:       "Legal",
		Visibility: models.VisibilityOrg,
	}, u1.ID)
	svc := NewWorkspaceMemberService(db)

	if _, err := svc.Add(ws, &AddWorkspaceMemberRequest{UserID: u2.ID, Role: models.WorkspaceRoleOwner}, u1.ID); err != nil {
		t.Fatal(err)
	}

	// With a second owner in place the original owner can leave.
	if err := svc.Remove(ws.ID, u1.ID); err != nil {
		t.Fatalf("removal with second owner should succeed: %v", err)
	}

	// And now u2 is the last owner.
	assertCode(t, svc.Remove(ws.ID, u2.ID), response.CodeLastOwner)
}

func TestWorkspaceMemberUpdateRole_LastOwnerDemotion(t *testing.T) {
	db := newTestDB(t)
	u1 := createTestUser(t, db, "u1@example.com")
	org := createTestOrg(t, db, "acme", u1.ID)

	ws, _ := NewWorkspaceService(db).Create(org.ID, &CreateWorkspaceRequest{
		Name:       "Legal",
		Visibility: models.VisibilityOrg,
	}, u1.ID)
	svc := NewWorkspaceMemberService(db)

	_, err := svc.UpdateRole(ws.ID, u1.ID, models.WorkspaceRoleEditor)
	assertCode(t, err, response.CodeLastOwner)

	var m models.WorkspaceMembership
	db.Where("workspace_id = ? AND user_id = ?", ws.ID, u1.ID).First(&m)
	if m.Role != models.WorkspaceRoleOwner {
		t.Errorf("role changed despite refusal: %s", m.Role)
	}
}

func TestWorkspaceMemberUpdateRole_InvalidRole(t *testing.T) {
	db := newTestDB(t)
	u1 := createTestUser(t, db, "u1@example.com")
	org := createTestOrg(t, db, "acme", u1.ID)

	ws, _ := NewWorkspaceService(db).Create(org.ID, &CreateWorkspaceRequest{
		Name:       "Legal",
		Visibility: models.VisibilityOrg,
	}, u1.ID)

	_, err := NewWorkspaceMemberService(db).UpdateRole(ws.ID, u1.ID, "superuser")
	assertCode(t, err, response.CodeValidation)
}
