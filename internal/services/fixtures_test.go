package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/saaskit-io/saaskit/internal/database/testutil"
	"github.com/saaskit-io/saaskit/internal/models"
	"github.com/saaskit-io/saaskit/pkg/crypto"
	"github.com/saaskit-io/saaskit/pkg/mail"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
}

func createUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	hash, err := crypto.HashPassword("password123")
	require.NoError(t, err)

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTenant(t *testing.T, db *gorm.DB, name, slug string) *models.Tenant {
	t.Helper()

	tenant := &models.Tenant{Name: name, Slug: slug, Timezone: "UTC"}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

func addMember(t *testing.T, db *gorm.DB, tenantID, userID string, role models.Role) *models.Membership {
	t.Helper()

	membership := &models.Membership{TenantID: tenantID, UserID: userID, Role: role}
	require.NoError(t, db.Create(membership).Error)
	return membership
}

// team bundles the standard fixture: one tenant with an owner, an admin, and
// a plain member.
type team struct {
	tenant *models.Tenant
	owner  *models.User
	admin  *models.User
	member *models.User

	ownerMembership  *models.Membership
	adminMembership  *models.Membership
	memberMembership *models.Membership
}

func createTeam(t *testing.T, db *gorm.DB) *team {
	t.Helper()

	tenant := createTenant(t, db, "Acme", "acme")
	owner := createUser(t, db, "Olive Owner", "owner@acme.test")
	admin := createUser(t, db, "Andy Admin", "admin@acme.test")
	member := createUser(t, db, "Mia Member", "member@acme.test")

	return &team{
		tenant:           tenant,
		owner:            owner,
		admin:            admin,
		member:           member,
		ownerMembership:  addMember(t, db, tenant.ID, owner.ID, models.RoleOwner),
		adminMembership:  addMember(t, db, tenant.ID, admin.ID, models.RoleAdmin),
		memberMembership: addMember(t, db, tenant.ID, member.ID, models.RoleMember),
	}
}

// recorderMailer captures sent messages for assertions.
type recorderMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *recorderMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recorderMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
