package teams

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/aliuyar1234/finhub/internal/billing"
	"github.com/aliuyar1234/finhub/internal/notify"
	"github.com/google/uuid"
)

type memberKey struct {
	teamID    uuid.UUID
	profileID uuid.UUID
}

// memDB is an in-memory stand-in for the Postgres stores. RunInTx restores
// the previous state when fn fails, and the unique indexes are emulated.
type memDB struct {
	teams   map[uuid.UUID]Team
	roles   map[uuid.UUID]Role
	members map[memberKey]Member
	invites map[uuid.UUID]Invite
	subs    map[uuid.UUID]billing.Subscription

	// hideOwned makes ListOwnedBy return nothing, simulating a concurrent
	// request that read before another one committed.
	hideOwned bool
	subsErr   error
}

func newMemDB() *memDB {
	return &memDB{
		teams:   map[uuid.UUID]Team{},
		roles:   map[uuid.UUID]Role{},
		members: map[memberKey]Member{},
		invites: map[uuid.UUID]Invite{},
		subs:    map[uuid.UUID]billing.Subscription{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *memDB) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	teams := cloneMap(db.teams)
	roles := cloneMap(db.roles)
	members := cloneMap(db.members)
	invites := cloneMap(db.invites)

	if err := fn(ctx); err != nil {
		db.teams, db.roles, db.members, db.invites = teams, roles, members, invites
		return err
	}
	return nil
}

// teams

type memTeams struct{ db *memDB }

func (s memTeams) Create(ctx context.Context, team *Team) error {
	if team.FreeTier {
		for _, t := range s.db.teams {
			if t.CreatedBy == team.CreatedBy && t.FreeTier {
				return ErrFreeTeamLimit
			}
		}
	}
	s.db.teams[team.ID] = *team
	return nil
}

func (s memTeams) GetByID(ctx context.Context, teamID uuid.UUID) (*Team, error) {
	t, ok := s.db.teams[teamID]
	if !ok {
		return nil, ErrTeamNotFound
	}
	return &t, nil
}

func (s memTeams) ListOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]Team, error) {
	if s.db.hideOwned {
		return nil, nil
	}
	var out []Team
	for _, t := range s.db.teams {
		if t.CreatedBy == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s memTeams) ListForProfile(ctx context.Context, profileID uuid.UUID) ([]TeamSummary, error) {
	var out []TeamSummary
	for key, m := range s.db.members {
		if key.profileID != profileID {
			continue
		}
		summary := TeamSummary{Team: s.db.teams[key.teamID]}
		if m.RoleID != nil {
			summary.RoleName = s.db.roles[*m.RoleID].Name
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s memTeams) SetFreeTier(ctx context.Context, teamID uuid.UUID, free bool) error {
	t, ok := s.db.teams[teamID]
	if !ok {
		return ErrTeamNotFound
	}
	t.FreeTier = free
	s.db.teams[teamID] = t
	return nil
}

// roles

type memRoles struct{ db *memDB }

func (s memRoles) nameTaken(role *Role) bool {
	for _, r := range s.db.roles {
		if r.TeamID == role.TeamID && r.ID != role.ID && strings.EqualFold(r.Name, role.Name) {
			return true
		}
	}
	return false
}

func (s memRoles) Create(ctx context.Context, role *Role) error {
	if s.nameTaken(role) {
		return ErrRoleNameConflict
	}
	s.db.roles[role.ID] = *role
	return nil
}

func (s memRoles) GetByID(ctx context.Context, teamID, roleID uuid.UUID) (*Role, error) {
	r, ok := s.db.roles[roleID]
	if !ok || r.TeamID != teamID {
		return nil, ErrRoleNotFound
	}
	return &r, nil
}

func (s memRoles) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]Role, error) {
	var out []Role
	for _, r := range s.db.roles {
		if r.TeamID == teamID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s memRoles) Update(ctx context.Context, role *Role) error {
	if _, ok := s.db.roles[role.ID]; !ok {
		return ErrRoleNotFound
	}
	if s.nameTaken(role) {
		return ErrRoleNameConflict
	}
	s.db.roles[role.ID] = *role
	return nil
}

func (s memRoles) Delete(ctx context.Context, teamID, roleID uuid.UUID) error {
	r, ok := s.db.roles[roleID]
	if !ok || r.TeamID != teamID {
		return ErrRoleNotFound
	}
	delete(s.db.roles, roleID)
	return nil
}

// members

type memMembers struct{ db *memDB }

func (s memMembers) Create(ctx context.Context, member *Member) (bool, error) {
	key := memberKey{teamID: member.TeamID, profileID: member.ProfileID}
	if _, ok := s.db.members[key]; ok {
		return false, nil
	}
	s.db.members[key] = *member
	return true, nil
}

func (s memMembers) Get(ctx context.Context, teamID, profileID uuid.UUID) (*Member, error) {
	m, ok := s.db.members[memberKey{teamID: teamID, profileID: profileID}]
	if !ok {
		return nil, ErrMemberNotFound
	}
	return &m, nil
}

func (s memMembers) GetForUpdate(ctx context.Context, teamID, profileID uuid.UUID) (*Member, error) {
	return s.Get(ctx, teamID, profileID)
}

func (s memMembers) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]Member, error) {
	var out []Member
	for key, m := range s.db.members {
		if key.teamID == teamID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProfileID.String() < out[j].ProfileID.String() })
	return out, nil
}

func (s memMembers) UpdateRole(ctx context.Context, teamID, profileID uuid.UUID, roleID *uuid.UUID) error {
	key := memberKey{teamID: teamID, profileID: profileID}
	m, ok := s.db.members[key]
	if !ok {
		return ErrMemberNotFound
	}
	m.RoleID = roleID
	s.db.members[key] = m
	return nil
}

func (s memMembers) Delete(ctx context.Context, teamID, profileID uuid.UUID) error {
	key := memberKey{teamID: teamID, profileID: profileID}
	if _, ok := s.db.members[key]; !ok {
		return ErrMemberNotFound
	}
	delete(s.db.members, key)
	return nil
}

func (s memMembers) ClearRole(ctx context.Context, teamID, roleID uuid.UUID) (int64, error) {
	var n int64
	for key, m := range s.db.members {
		if key.teamID == teamID && m.RoleID != nil && *m.RoleID == roleID {
			m.RoleID = nil
			s.db.members[key] = m
			n++
		}
	}
	return n, nil
}

// invites

type memInvites struct{ db *memDB }

func (s memInvites) Create(ctx context.Context, invite *Invite) error {
	for id, inv := range s.db.invites {
		if inv.TeamID != invite.TeamID || !strings.EqualFold(inv.Email, invite.Email) {
			continue
		}
		if !inv.ExpiresAt.After(invite.CreatedAt) {
			delete(s.db.invites, id)
			continue
		}
		return ErrDuplicateInvite
	}
	s.db.invites[invite.ID] = *invite
	return nil
}

func (s memInvites) GetPending(ctx context.Context, inviteID uuid.UUID) (*Invite, error) {
	inv, ok := s.db.invites[inviteID]
	if !ok || inv.Status != InviteStatusPending {
		return nil, ErrInviteNotFound
	}
	return &inv, nil
}

func (s memInvites) ListPendingByTeam(ctx context.Context, teamID uuid.UUID, now time.Time) ([]Invite, error) {
	var out []Invite
	for _, inv := range s.db.invites {
		if inv.TeamID == teamID && inv.ExpiresAt.After(now) {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s memInvites) ListPendingByEmail(ctx context.Context, email string, now time.Time) ([]InboxInvite, error) {
	var out []InboxInvite
	for _, inv := range s.db.invites {
		if !strings.EqualFold(inv.Email, email) || !inv.ExpiresAt.After(now) {
			continue
		}
		item := InboxInvite{Invite: inv, TeamName: s.db.teams[inv.TeamID].Name}
		if inv.RoleID != nil {
			item.RoleName = s.db.roles[*inv.RoleID].Name
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamName < out[j].TeamName })
	return out, nil
}

func (s memInvites) Delete(ctx context.Context, inviteID uuid.UUID) error {
	if _, ok := s.db.invites[inviteID]; !ok {
		return ErrInviteNotFound
	}
	delete(s.db.invites, inviteID)
	return nil
}

func (s memInvites) ClearRole(ctx context.Context, teamID, roleID uuid.UUID) (int64, error) {
	var n int64
	for id, inv := range s.db.invites {
		if inv.TeamID == teamID && inv.RoleID != nil && *inv.RoleID == roleID {
			inv.RoleID = nil
			s.db.invites[id] = inv
			n++
		}
	}
	return n, nil
}

func (s memInvites) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	for id, inv := range s.db.invites {
		if !inv.ExpiresAt.After(before) {
			delete(s.db.invites, id)
			n++
		}
	}
	return n, nil
}

// subscriptions

type memSubs struct{ db *memDB }

func (s memSubs) FindByTeamID(ctx context.Context, teamID uuid.UUID) (*billing.Subscription, error) {
	if s.db.subsErr != nil {
		return nil, s.db.subsErr
	}
	sub, ok := s.db.subs[teamID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

// side effects

// syncTasks runs tasks inline so tests can observe their effects.
type syncTasks struct {
	names  []string
	errors []error
}

func (t *syncTasks) Go(name string, fn func(ctx context.Context) error) {
	t.names = append(t.names, name)
	t.errors = append(t.errors, fn(context.Background()))
}

type fakeSeeder struct {
	seeded []uuid.UUID
	err    error
}

func (f *fakeSeeder) SeedDefaults(ctx context.Context, teamID uuid.UUID) error {
	f.seeded = append(f.seeded, teamID)
	return f.err
}

type fakeMailer struct {
	sent []notify.InviteEmail
	err  error
}

func (f *fakeMailer) SendInvite(ctx context.Context, msg notify.InviteEmail) error {
	f.sent = append(f.sent, msg)
	return f.err
}

type fakeMetrics struct {
	allowed   int
	denied    int
	limitHits int
}

func (f *fakeMetrics) RBACDecision(permission string, allowed bool) {
	if allowed {
		f.allowed++
	} else {
		f.denied++
	}
}

func (f *fakeMetrics) TeamLimitRejected() { f.limitHits++ }

var errStoreDown = errors.New("store unavailable")
