package main

import (
	"fmt"
	"log"
	"os"

	"github.com/claridoc/backend/internal/config"
	"github.com/claridoc/backend/internal/models"
	"github.com/claridoc/backend/internal/services"
	"github.com/claridoc/backend/internal/utils"
)

// Seeds a demo organization with two users, an org-visible default
// workspace and a private one. Intended for local frontend development.
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := models.InitDB(&cfg.Database); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	hashed, err := utils.HashPassword("demo1234")
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	alice := models.User{Email: "alice@demo.local", PasswordHash: hashed, Name: "Alice", IsActive: true, EmailVerified: true}
	bob := models.User{Email: "bob@demo.local", PasswordHash: hashed, Name: "Bob", IsActive: true, EmailVerified: true}
	for _, u := range []*models.User{&alice, &bob} {
		if err := db.Where("email = ?", u.Email).FirstOrCreate(u).Error; err != nil {
			log.Fatalf("Failed to seed user %s: %v", u.Email, err)
		}
	}

	orgSvc := services.NewOrganizationService(db)
	org, err := orgSvc.Create(&services.CreateOrgRequest{Name: "Demo Corp", Slug: "demo-corp"}, alice.ID)
	if err != nil {
		log.Fatalf("Failed to create demo org: %v", err)
	}

	if err := db.Create(&models.OrgMembership{OrgID: org.ID, UserID: bob.ID, Role: models.OrgRoleMember}).Error; err != nil {
		log.Fatalf("Failed to enroll bob: %v", err)
	}

	wsSvc := services.NewWorkspaceService(db)
	legal, err := wsSvc.Create(org.ID, &services.CreateWorkspaceRequest{
		Name:       "Legal",
		Visibility: models.VisibilityOrg,
		IsDefault:  true,
	}, alice.ID)
	if err != nil {
		log.Fatalf("Failed to create Legal workspace: %v", err)
	}

	scratch, err := wsSvc.Create(org.ID, &services.CreateWorkspaceRequest{
		Name:       "Scratch",
		Visibility: models.VisibilityPrivate,
	}, alice.ID)
	if err != nil {
		log.Fatalf("Failed to create Scratch workspace: %v", err)
	}

	fmt.Println("Demo data seeded:")
	fmt.Printf("  org        %-12s id=%d\n", org.Slug, org.ID)
	fmt.Printf("  workspace  %-12s id=%d (default, org-visible)\n", legal.Name, legal.ID)
	fmt.Printf("  workspace  %-12s id=%d (private)\n", scratch.Name, scratch.ID)
	fmt.Println("  users      alice@demo.local / bob@demo.local (password: demo1234)")
}
