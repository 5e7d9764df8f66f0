package iam_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/auth"
	userDatamodel "github.com/frahmantamala/reputation-management/internal/core/datamodel/user"
	"github.com/frahmantamala/reputation-management/internal/iam"
)

var _ = Describe("IAMService", func() {
	var (
		ctx     context.Context
		f       *fixture
		service *iam.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		f = newFixture()
		service = iam.NewService(f.store, iam.NewChecker(f.store, f.slogger), f.slogger)
	})

	roleTags := func(userID string) []string {
		var row userDatamodel.User
		ExpectWithOffset(1, f.db.Where("id = ?", userID).First(&row).Error).To(Succeed())
		var tags []string
		ExpectWithOffset(1, json.Unmarshal(row.Roles, &tags)).To(Succeed())
		return tags
	}

	Describe("AssignRole", func() {
		It("should assign the role and add its tag", func() {
			assignment, err := service.AssignRole(ctx, "alice", f.roles[auth.RoleCompanyOwner])

			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.UserID).To(Equal("alice"))
			Expect(roleTags("alice")).To(ConsistOf(auth.RoleConsumer, auth.RoleCompanyOwner))

			allowed, err := service.CheckPermission(ctx, iam.CheckInput{UserID: "alice", Resource: "company", Action: "update"})
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeTrue())
		})

		It("should reject a duplicate assignment", func() {
			_, err := service.AssignRole(ctx, "alice", f.roles[auth.RoleConsumer])

			Expect(errors.Is(err, internal.ErrRoleAlreadyAssigned)).To(BeTrue())
		})

		It("should reject unknown users and roles", func() {
			_, err := service.AssignRole(ctx, "ghost", f.roles[auth.RoleConsumer])
			Expect(errors.Is(err, internal.ErrUserNotFound)).To(BeTrue())

			_, err = service.AssignRole(ctx, "alice", "no-such-role")
			Expect(errors.Is(err, internal.ErrRoleNotFound)).To(BeTrue())
		})
	})

	Describe("RemoveRole", func() {
		It("should remove the role and its tag", func() {
			Expect(service.RemoveRole(ctx, "both", f.roles[auth.RoleCompanyOwner])).To(Succeed())

			Expect(roleTags("both")).To(Equal([]string{auth.RoleConsumer}))
			allowed, err := service.CheckPermission(ctx, iam.CheckInput{UserID: "both", Resource: "company", Action: "update"})
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeFalse())
		})

		It("should report a role the user does not have", func() {
			err := service.RemoveRole(ctx, "alice", f.roles[auth.RoleCompanyAdmin])

			Expect(errors.Is(err, internal.ErrRoleNotAssigned)).To(BeTrue())
		})
	})

	Describe("Listings", func() {
		It("should list roles by name", func() {
			roles, err := service.ListRoles(ctx)

			Expect(err).NotTo(HaveOccurred())
			names := make([]string, 0, len(roles))
			for _, r := range roles {
				names = append(names, r.Name)
			}
			Expect(names).To(Equal([]string{
				auth.RoleCompanyAdmin, auth.RoleCompanyOwner, auth.RoleConsumer, auth.RoleSuperAdmin,
			}))
		})

		It("should list the permission catalog", func() {
			permissions, err := service.ListPermissions(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(permissions).To(HaveLen(4))
			Expect(permissions[0].Key()).To(Equal("company:update"))
		})

		It("should list a user's permissions and reject unknown users", func() {
			permissions, err := service.ListUserPermissions(ctx, "owner")
			Expect(err).NotTo(HaveOccurred())
			Expect(permissions).To(Equal([]string{"company:update", "reputation:read"}))

			_, err = service.ListUserPermissions(ctx, "ghost")
			Expect(errors.Is(err, internal.ErrUserNotFound)).To(BeTrue())
		})
	})
})
