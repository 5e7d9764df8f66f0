package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/reputation-management/internal/auth"
	iamDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/iam"
	userDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/user"
	"github.com/frahmantamala/reputation-management/internal/iam"
)

type seedPermission struct {
	Resource string
	Action   string
	Desc     string
}

var seedPermissions = []seedPermission{
	{"company", "create", "Can create a company"},
	{"company", "read", "Can list companies in the back office"},
	{"company", "update", "Can update a company"},
	{"feedback", "create", "Can submit feedback"},
	{"feedback", "read", "Can list feedback in the back office"},
	{"feedback", "update", "Can edit own feedback"},
	{"feedback", "delete", "Can delete own feedback"},
	{"reputation", "read", "Can read reputation metrics"},
	{"reputation", "calculate", "Can recalculate reputation metrics"},
	{"iam", "read", "Can inspect roles and permissions"},
	{"iam", "manage", "Can assign and remove roles"},
}

var seedRoles = []struct {
	Name        string
	Desc        string
	Permissions []string
}{
	{auth.RoleConsumer, "Consumer leaving feedback", []string{
		"feedback:create", "feedback:read", "feedback:update", "feedback:delete",
		"company:read", "reputation:read",
	}},
	{auth.RoleCompanyOwner, "Owner of a company", []string{
		"company:create", "company:read", "company:update",
		"reputation:read", "feedback:read",
	}},
	{auth.RoleCompanyAdmin, "Administrator of a company", []string{
		"company:read", "company:update",
		"reputation:read", "reputation:calculate", "feedback:read",
	}},
	// bypasses every check; grants are informational
	{auth.RoleSuperAdmin, "Platform administrator", nil},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed roles, permissions and the platform administrator",
	Long:  `Seed the IAM catalog (roles, permissions, grants) and a SUPER_ADMIN account.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, lg, err := setup()
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initGorm(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer closeGorm(db)

		if clearData {
			if err := clearCatalog(db); err != nil {
				log.Fatalf("failed to clear catalog: %v", err)
			}
			lg.Info("cleared permissions and grants")
		}

		permissionIDs := make(map[string]string, len(seedPermissions))
		for _, p := range seedPermissions {
			key := iam.PermissionKey(p.Resource, p.Action)
			desc := p.Desc
			row := iamDatamodel.Permission{Name: key, Resource: p.Resource, Action: p.Action, Description: &desc}
			if err := db.Where(iamDatamodel.Permission{Name: key}).FirstOrCreate(&row).Error; err != nil {
				log.Fatalf("failed to insert permission %s: %v", key, err)
			}
			permissionIDs[key] = row.ID
		}
		fmt.Printf("Seeded %d permissions\n", len(permissionIDs))

		roleIDs := make(map[string]string, len(seedRoles))
		for _, r := range seedRoles {
			desc := r.Desc
			role := iamDatamodel.Role{Name: r.Name, Description: &desc}
			if err := db.Where(iamDatamodel.Role{Name: r.Name}).FirstOrCreate(&role).Error; err != nil {
				log.Fatalf("failed to insert role %s: %v", r.Name, err)
			}
			roleIDs[r.Name] = role.ID

			for _, key := range r.Permissions {
				pid, ok := permissionIDs[key]
				if !ok {
					log.Fatalf("role %s references unknown permission %s", r.Name, key)
				}
				grant := iamDatamodel.RolePermission{RoleID: role.ID, PermissionID: pid}
				if err := db.Where(iamDatamodel.RolePermission{RoleID: role.ID, PermissionID: pid}).FirstOrCreate(&grant).Error; err != nil {
					log.Fatalf("failed to grant %s to %s: %v", key, r.Name, err)
				}
			}
			fmt.Printf("Seeded role %s with %d permissions\n", r.Name, len(r.Permissions))
		}

		hasher := auth.NewPasswordHasher(cfg.Security.PasswordHasher, cfg.Security.BCryptCost)
		if err := seedSuperAdmin(db, hasher, roleIDs[auth.RoleSuperAdmin]); err != nil {
			log.Fatalf("failed to seed super admin: %v", err)
		}
	},
}

func seedSuperAdmin(db *gorm.DB, hasher auth.PasswordHasher, roleID string) error {
	email := getEnvOr("SEED_ADMIN_EMAIL", "admin@reputation.local")
	password := getEnvOr("SEED_ADMIN_PASSWORD", "Admin@12345")

	var existing userDatamodel.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		fmt.Println("super admin already exists; will ensure role:", email)
	} else if err != gorm.ErrRecordNotFound {
		return err
	} else {
		hash, err := hasher.Hash(password)
		if err != nil {
			return err
		}
		roles, _ := json.Marshal([]string{auth.RoleSuperAdmin})
		name := "Platform Admin"
		existing = userDatamodel.User{
			Email:        email,
			PasswordHash: hash,
			Name:         &name,
			Roles:        roles,
			Status:       userDatamodel.StatusActive,
		}
		if err := db.Create(&existing).Error; err != nil {
			return err
		}
		fmt.Println("Seeded super admin:", email)
	}

	assignment := iamDatamodel.UserRole{UserID: existing.ID, RoleID: roleID}
	return db.Where(iamDatamodel.UserRole{UserID: existing.ID, RoleID: roleID}).FirstOrCreate(&assignment).Error
}

// clearCatalog keeps roles so existing user_roles assignments survive.
func clearCatalog(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"role_permissions", "permissions"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
