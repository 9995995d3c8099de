package auth

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Role model", func() {
	ginkgo.DescribeTable("capability table",
		func(role Role, capability Capability, expected bool) {
			gomega.Expect(RoleHasCapability(role, capability)).To(gomega.Equal(expected))
			actor := &Actor{ID: 1, Role: role, Active: true}
			gomega.Expect(HasCapability(actor, capability)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("admin views", RoleAdministrator, CapabilityView, true),
		ginkgo.Entry("officer views", RoleAdministrativeOfficer, CapabilityView, true),
		ginkgo.Entry("authorized user views", RoleAuthorizedUser, CapabilityView, true),

		ginkgo.Entry("admin creates", RoleAdministrator, CapabilityCreateRecord, true),
		ginkgo.Entry("officer creates", RoleAdministrativeOfficer, CapabilityCreateRecord, true),
		ginkgo.Entry("authorized user creates", RoleAuthorizedUser, CapabilityCreateRecord, false),

		ginkgo.Entry("admin edits", RoleAdministrator, CapabilityEditRecord, true),
		ginkgo.Entry("officer edits", RoleAdministrativeOfficer, CapabilityEditRecord, true),
		ginkgo.Entry("authorized user edits", RoleAuthorizedUser, CapabilityEditRecord, false),

		ginkgo.Entry("admin approves leave", RoleAdministrator, CapabilityApproveLeave, true),
		ginkgo.Entry("officer approves leave", RoleAdministrativeOfficer, CapabilityApproveLeave, true),
		ginkgo.Entry("authorized user approves leave", RoleAuthorizedUser, CapabilityApproveLeave, false),

		ginkgo.Entry("admin manages sanctions", RoleAdministrator, CapabilityManageSanctions, true),
		ginkgo.Entry("officer manages sanctions", RoleAdministrativeOfficer, CapabilityManageSanctions, true),
		ginkgo.Entry("authorized user manages sanctions", RoleAuthorizedUser, CapabilityManageSanctions, false),

		ginkgo.Entry("admin deletes", RoleAdministrator, CapabilityDelete, true),
		ginkgo.Entry("officer deletes", RoleAdministrativeOfficer, CapabilityDelete, false),
		ginkgo.Entry("authorized user deletes", RoleAuthorizedUser, CapabilityDelete, false),

		ginkgo.Entry("admin reassigns roles", RoleAdministrator, CapabilityReassignRole, true),
		ginkgo.Entry("officer reassigns roles", RoleAdministrativeOfficer, CapabilityReassignRole, false),
		ginkgo.Entry("authorized user reassigns roles", RoleAuthorizedUser, CapabilityReassignRole, false),

		ginkgo.Entry("admin configures the system", RoleAdministrator, CapabilityConfigureSystem, true),
		ginkgo.Entry("officer configures the system", RoleAdministrativeOfficer, CapabilityConfigureSystem, false),
		ginkgo.Entry("authorized user configures the system", RoleAuthorizedUser, CapabilityConfigureSystem, false),
	)

	ginkgo.It("should cover every role and capability in the table", func() {
		for _, capability := range Capabilities {
			gomega.Expect(capabilityTable).To(gomega.HaveKey(capability))
		}
		gomega.Expect(capabilityTable).To(gomega.HaveLen(len(Capabilities)))
	})

	ginkgo.It("should deny every capability to anonymous and inactive actors", func() {
		inactive := &Actor{ID: 9, Role: RoleAdministrator, Active: false}
		for _, capability := range Capabilities {
			gomega.Expect(HasCapability(nil, capability)).To(gomega.BeFalse())
			gomega.Expect(HasCapability(inactive, capability)).To(gomega.BeFalse())
		}
	})

	ginkgo.It("should deny an unknown role", func() {
		gomega.Expect(HasCapability(&Actor{ID: 1, Role: Role("superuser"), Active: true}, CapabilityView)).To(gomega.BeFalse())
	})

	ginkgo.Describe("ParseRole", func() {
		ginkgo.It("should accept the current vocabulary", func() {
			for _, r := range Roles {
				parsed, err := ParseRole(string(r))
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(parsed).To(gomega.Equal(r))
			}
		})

		ginkgo.It("should reject legacy names", func() {
			for legacy := range LegacyRoleNames {
				_, err := ParseRole(legacy)
				gomega.Expect(err).To(gomega.HaveOccurred())
			}
		})
	})
})
