package devserver

import (
	"cmp"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ashureev/castline/internal/domain"
)

// State errors. Handlers map them to HTTP statuses.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad request")
)

type userRec struct {
	user domain.User
	hash []byte
}

type postRec struct {
	id          string
	authorID    string
	title       string
	description string
	mediaURL    string
	mediaType   string
	groupID     string
	likes       []string
	comments    []commentRec
	createdAt   time.Time
}

type commentRec struct {
	id        string
	userID    string
	text      string
	createdAt time.Time
}

type groupRec struct {
	id          string
	name        string
	description string
	coverImage  string
	isPrivate   bool
	adminID     string
	members     []string
	createdAt   time.Time
}

type callRec struct {
	call     domain.CastingCall
	authorID string
}

type notificationRec struct {
	id          string
	applicantID string
	recipientID string
	callID      string
	status      string
	createdAt   time.Time
}

type conversationRec struct {
	id           string
	participants []string
	createdAt    time.Time
	updatedAt    time.Time
}

type messageRec struct {
	id             string
	conversationID string
	senderID       string
	receiverID     string
	text           string
	createdAt      time.Time
}

// State is the in-memory database of the development backend. Every method
// is safe for concurrent use.
type State struct {
	mu  sync.RWMutex
	now func() time.Time

	users         map[string]*userRec
	emails        map[string]string // lower-cased email -> user id
	posts         []*postRec        // oldest first
	groups        []*groupRec
	calls         []*callRec
	notifications []*notificationRec
	conversations []*conversationRec
	messages      []*messageRec
}

// NewState returns an empty database.
func NewState(now func() time.Time) *State {
	if now == nil {
		now = time.Now
	}
	return &State{
		now:    now,
		users:  make(map[string]*userRec),
		emails: make(map[string]string),
	}
}

func newID() string { return strings.ReplaceAll(uuid.NewString(), "-", "") }

// --- users and auth ---

// Register creates an account.
func (s *State) Register(fullName, email, password, role string) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(email))
	if _, taken := s.emails[key]; taken {
		return domain.User{}, ErrConflict
	}
	u := domain.User{
		ID:        newID(),
		FullName:  fullName,
		Email:     strings.TrimSpace(email),
		Role:      role,
		CreatedAt: s.now(),
	}
	s.users[u.ID] = &userRec{user: u, hash: hash}
	s.emails[key] = u.ID
	return u, nil
}

// Authenticate checks email and password.
func (s *State) Authenticate(email, password string) (domain.User, bool) {
	s.mu.RLock()
	id, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	var rec *userRec
	if ok {
		rec = s.users[id]
	}
	s.mu.RUnlock()

	if rec == nil || bcrypt.CompareHashAndPassword(rec.hash, []byte(password)) != nil {
		return domain.User{}, false
	}
	return s.User(id)
}

func (s *State) checkPassword(userID, password string) bool {
	s.mu.RLock()
	rec := s.users[userID]
	s.mu.RUnlock()
	return rec != nil && bcrypt.CompareHashAndPassword(rec.hash, []byte(password)) == nil
}

// ChangePassword replaces the password after checking the current one.
func (s *State) ChangePassword(userID, current, next string) error {
	if !s.checkPassword(userID, current) {
		return ErrForbidden
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	rec.hash = hash
	return nil
}

// ChangeEmail replaces the address after checking the password.
func (s *State) ChangeEmail(userID, newEmail, password string) (string, error) {
	if !s.checkPassword(userID, password) {
		return "", ErrForbidden
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[userID]
	if !ok {
		return "", ErrNotFound
	}
	key := strings.ToLower(strings.TrimSpace(newEmail))
	if owner, taken := s.emails[key]; taken && owner != userID {
		return "", ErrConflict
	}
	delete(s.emails, strings.ToLower(rec.user.Email))
	rec.user.Email = strings.TrimSpace(newEmail)
	s.emails[key] = userID
	return rec.user.Email, nil
}

// DeleteAccount removes the user and everything they own.
func (s *State) DeleteAccount(userID, password string) error {
	if !s.checkPassword(userID, password) {
		return ErrForbidden
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	delete(s.emails, strings.ToLower(rec.user.Email))
	delete(s.users, userID)

	s.posts = slices.DeleteFunc(s.posts, func(p *postRec) bool { return p.authorID == userID })
	for _, p := range s.posts {
		p.likes = without(p.likes, userID)
		p.comments = slices.DeleteFunc(p.comments, func(c commentRec) bool { return c.userID == userID })
	}
	s.groups = slices.DeleteFunc(s.groups, func(g *groupRec) bool { return g.adminID == userID })
	for _, g := range s.groups {
		g.members = without(g.members, userID)
	}
	for _, u := range s.users {
		u.user.Followers = without(u.user.Followers, userID)
		u.user.Following = without(u.user.Following, userID)
	}
	s.calls = slices.DeleteFunc(s.calls, func(c *callRec) bool { return c.authorID == userID })
	s.notifications = slices.DeleteFunc(s.notifications, func(n *notificationRec) bool {
		return n.applicantID == userID || n.recipientID == userID
	})
	return nil
}

// Exists reports whether userID is a live account.
func (s *State) Exists(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[userID]
	return ok
}

// User returns a copy of the user document.
func (s *State) User(userID string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[userID]
	if !ok {
		return domain.User{}, false
	}
	return cloneUser(rec.user), true
}

func cloneUser(u domain.User) domain.User {
	u.Skills = slices.Clone(u.Skills)
	u.Followers = slices.Clone(u.Followers)
	u.Following = slices.Clone(u.Following)
	return u
}

// UpdateProfile applies the non-empty fields of upd.
func (s *State) UpdateProfile(userID string, upd domain.ProfileUpdate) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	u := &rec.user
	if upd.Bio != "" {
		u.Bio = upd.Bio
	}
	if upd.Location != "" {
		u.Location = upd.Location
	}
	if upd.Skills != nil {
		u.Skills = slices.Clone(upd.Skills)
	}
	if upd.ProfilePictureURL != "" {
		u.ProfilePictureURL = upd.ProfilePictureURL
		u.Avatar = upd.ProfilePictureURL
	}
	if upd.ResumeURL != "" {
		u.ResumeURL = upd.ResumeURL
	}
	return cloneUser(*u), nil
}

// SetFollow makes followerID follow (or stop following) targetID.
func (s *State) SetFollow(followerID, targetID string, follow bool) error {
	if followerID == targetID {
		return ErrBadRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	follower, ok1 := s.users[followerID]
	target, ok2 := s.users[targetID]
	if !ok1 || !ok2 {
		return ErrNotFound
	}
	if follow {
		if slices.Contains(target.user.Followers, followerID) {
			return ErrConflict
		}
		target.user.Followers = append(target.user.Followers, followerID)
		follower.user.Following = append(follower.user.Following, targetID)
		return nil
	}
	if !slices.Contains(target.user.Followers, followerID) {
		return ErrConflict
	}
	target.user.Followers = without(target.user.Followers, followerID)
	follower.user.Following = without(follower.user.Following, targetID)
	return nil
}

// Search filters members by free text (name or skill), role and location.
func (s *State) Search(q domain.SearchQuery) []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	text := strings.ToLower(strings.TrimSpace(q.Query))
	loc := strings.ToLower(strings.TrimSpace(q.Location))
	var out []domain.User
	for _, rec := range s.users {
		u := rec.user
		if q.Role != "" && q.Role != domain.AllRoles && u.Role != q.Role {
			continue
		}
		if loc != "" && !strings.Contains(strings.ToLower(u.Location), loc) {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(u.FullName), text) &&
			!slices.ContainsFunc(u.Skills, func(sk string) bool { return strings.Contains(strings.ToLower(sk), text) }) {
			continue
		}
		u = cloneUser(u)
		u.Email = ""
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b domain.User) int { return cmp.Compare(a.FullName, b.FullName) })
	return out
}

// ref returns the populated reference of userID. Called with mu held.
func (s *State) ref(userID string) domain.UserRef {
	rec, ok := s.users[userID]
	if !ok {
		return domain.UserRef{ID: userID, FullName: "Deleted user"}
	}
	return rec.user.Ref()
}

// --- posts ---

// CreatePost stores a post, optionally inside a group the author belongs to.
func (s *State) CreatePost(authorID, title, groupID, mediaURL, mediaType string) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if groupID != "" {
		g := s.group(groupID)
		if g == nil {
			return domain.Post{}, ErrNotFound
		}
		if !slices.Contains(g.members, authorID) {
			return domain.Post{}, ErrForbidden
		}
	}
	p := &postRec{
		id:        newID(),
		authorID:  authorID,
		title:     title,
		groupID:   groupID,
		mediaURL:  mediaURL,
		mediaType: mediaType,
		createdAt: s.now(),
	}
	s.posts = append(s.posts, p)
	return s.postView(p), nil
}

func (s *State) post(id string) *postRec {
	for _, p := range s.posts {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (s *State) canModify(p *postRec, userID string) bool {
	if p.authorID == userID {
		return true
	}
	if p.groupID != "" {
		if g := s.group(p.groupID); g != nil && g.adminID == userID {
			return true
		}
	}
	return false
}

// postView builds the wire form of p. Called with mu held.
func (s *State) postView(p *postRec) domain.Post {
	out := domain.Post{
		ID:          p.id,
		Author:      s.ref(p.authorID),
		Title:       p.title,
		Description: p.description,
		MediaURL:    p.mediaURL,
		MediaType:   p.mediaType,
		Likes:       slices.Clone(p.likes),
		Comments:    make([]domain.Comment, 0, len(p.comments)),
		CreatedAt:   p.createdAt,
	}
	if out.Likes == nil {
		out.Likes = []string{}
	}
	for _, c := range p.comments {
		out.Comments = append(out.Comments, s.commentView(c))
	}
	if p.groupID != "" {
		if g := s.group(p.groupID); g != nil {
			out.Group = &domain.GroupRef{ID: g.id, Name: g.name, Admin: s.ref(g.adminID)}
		}
	}
	return out
}

func (s *State) commentView(c commentRec) domain.Comment {
	return domain.Comment{ID: c.id, Author: s.ref(c.userID), Text: c.text, CreatedAt: c.createdAt}
}

// Feed returns the posts visible to viewerID, newest first: posts outside
// groups plus posts of groups the viewer belongs to.
func (s *State) Feed(viewerID string) []domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.postsWhere(func(p *postRec) bool {
		if p.groupID == "" {
			return true
		}
		g := s.group(p.groupID)
		return g != nil && (!g.isPrivate || slices.Contains(g.members, viewerID))
	})
}

func (s *State) postsWhere(keep func(*postRec) bool) []domain.Post {
	out := []domain.Post{}
	for i := len(s.posts) - 1; i >= 0; i-- {
		p := s.posts[i]
		if keep(p) {
			out = append(out, s.postView(p))
		}
	}
	return out
}

// UpdatePost edits a post the caller may modify.
func (s *State) UpdatePost(userID, postID string, upd domain.PostUpdate) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.post(postID)
	if p == nil {
		return domain.Post{}, ErrNotFound
	}
	if !s.canModify(p, userID) {
		return domain.Post{}, ErrForbidden
	}
	p.title = upd.Title
	p.description = upd.Description
	if upd.MediaURL != "" {
		p.mediaURL = upd.MediaURL
		p.mediaType = upd.MediaType
	}
	return s.postView(p), nil
}

// DeletePost removes a post the caller may modify.
func (s *State) DeletePost(userID, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.post(postID)
	if p == nil {
		return ErrNotFound
	}
	if !s.canModify(p, userID) {
		return ErrForbidden
	}
	s.posts = slices.DeleteFunc(s.posts, func(x *postRec) bool { return x.id == postID })
	return nil
}

// ToggleLike flips userID's like and returns the new likes list.
func (s *State) ToggleLike(userID, postID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.post(postID)
	if p == nil {
		return nil, ErrNotFound
	}
	if slices.Contains(p.likes, userID) {
		p.likes = without(p.likes, userID)
	} else {
		p.likes = append(p.likes, userID)
	}
	return slices.Clone(p.likes), nil
}

// AddComment appends a comment and returns the full list.
func (s *State) AddComment(userID, postID, text string) ([]domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.post(postID)
	if p == nil {
		return nil, ErrNotFound
	}
	p.comments = append(p.comments, commentRec{id: newID(), userID: userID, text: text, createdAt: s.now()})
	out := make([]domain.Comment, 0, len(p.comments))
	for _, c := range p.comments {
		out = append(out, s.commentView(c))
	}
	return out, nil
}

// DeleteComment removes a comment by its author or the post's author.
func (s *State) DeleteComment(userID, postID, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.post(postID)
	if p == nil {
		return ErrNotFound
	}
	i := slices.IndexFunc(p.comments, func(c commentRec) bool { return c.id == commentID })
	if i < 0 {
		return ErrNotFound
	}
	if p.comments[i].userID != userID && p.authorID != userID {
		return ErrForbidden
	}
	p.comments = slices.Delete(p.comments, i, i+1)
	return nil
}

// Profile returns a member with their posts.
func (s *State) Profile(userID string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[userID]
	if !ok {
		return domain.Profile{}, ErrNotFound
	}
	u := cloneUser(rec.user)
	u.Email = ""
	return domain.Profile{
		User:  u,
		Posts: s.postsWhere(func(p *postRec) bool { return p.authorID == userID && p.groupID == "" }),
	}, nil
}

// Leaderboard ranks members by engagement: one point per like received and
// half a point per comment received on their posts.
func (s *State) Leaderboard(role string) []domain.LeaderboardEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byUser := make(map[string]*domain.LeaderboardEntry)
	for _, p := range s.posts {
		rec, ok := s.users[p.authorID]
		if !ok || (role != "" && role != domain.AllRoles && rec.user.Role != role) {
			continue
		}
		e, ok := byUser[p.authorID]
		if !ok {
			e = &domain.LeaderboardEntry{
				UserID:   rec.user.ID,
				FullName: rec.user.FullName,
				Role:     rec.user.Role,
				Avatar:   rec.user.Ref().DisplayAvatar(),
			}
			byUser[p.authorID] = e
		}
		e.TotalPosts++
		e.TotalLikes += len(p.likes)
		e.EngagementScore += float64(len(p.likes)) + 0.5*float64(len(p.comments))
	}

	out := make([]domain.LeaderboardEntry, 0, len(byUser))
	for _, e := range byUser {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b domain.LeaderboardEntry) int {
		if c := cmp.Compare(b.EngagementScore, a.EngagementScore); c != 0 {
			return c
		}
		return cmp.Compare(a.FullName, b.FullName)
	})
	if len(out) > leaderboardSize {
		out = out[:leaderboardSize]
	}
	return out
}

const leaderboardSize = 10

// --- groups ---

func (s *State) group(id string) *groupRec {
	for _, g := range s.groups {
		if g.id == id {
			return g
		}
	}
	return nil
}

func (s *State) groupView(g *groupRec) domain.Group {
	out := domain.Group{
		ID:          g.id,
		Name:        g.name,
		Description: g.description,
		CoverImage:  g.coverImage,
		IsPrivate:   g.isPrivate,
		Admin:       s.ref(g.adminID),
		Members:     make([]domain.UserRef, 0, len(g.members)),
		CreatedAt:   g.createdAt,
	}
	for _, m := range g.members {
		out.Members = append(out.Members, s.ref(m))
	}
	return out
}

// CreateGroup creates a group with adminID as admin and first member.
func (s *State) CreateGroup(adminID string, in domain.GroupInput) domain.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &groupRec{
		id:          newID(),
		name:        in.Name,
		description: in.Description,
		isPrivate:   in.IsPrivate,
		adminID:     adminID,
		members:     []string{adminID},
		createdAt:   s.now(),
	}
	s.groups = append(s.groups, g)
	return s.groupView(g)
}

// Groups lists every group, newest first.
func (s *State) Groups() []domain.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Group, 0, len(s.groups))
	for i := len(s.groups) - 1; i >= 0; i-- {
		out = append(out, s.groupView(s.groups[i]))
	}
	return out
}

// Group returns one group.
func (s *State) Group(id string) (domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g := s.group(id)
	if g == nil {
		return domain.Group{}, ErrNotFound
	}
	return s.groupView(g), nil
}

// GroupPosts returns a group's posts. Private groups show posts to members only.
func (s *State) GroupPosts(viewerID, groupID string) ([]domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g := s.group(groupID)
	if g == nil {
		return nil, ErrNotFound
	}
	if g.isPrivate && !slices.Contains(g.members, viewerID) {
		return nil, ErrForbidden
	}
	return s.postsWhere(func(p *postRec) bool { return p.groupID == groupID }), nil
}

// SetMembership joins or leaves. The admin cannot leave.
func (s *State) SetMembership(userID, groupID string, join bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.group(groupID)
	if g == nil {
		return ErrNotFound
	}
	member := slices.Contains(g.members, userID)
	switch {
	case join && member, !join && !member:
		return ErrConflict
	case !join && g.adminID == userID:
		return ErrForbidden
	case join:
		g.members = append(g.members, userID)
	default:
		g.members = without(g.members, userID)
	}
	return nil
}

// RemoveMember is SetMembership(false) on behalf of the admin.
func (s *State) RemoveMember(adminID, groupID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.group(groupID)
	if g == nil {
		return ErrNotFound
	}
	if g.adminID != adminID || memberID == adminID {
		return ErrForbidden
	}
	if !slices.Contains(g.members, memberID) {
		return ErrNotFound
	}
	g.members = without(g.members, memberID)
	return nil
}

// SetGroupCover replaces the cover image. Admin only.
func (s *State) SetGroupCover(adminID, groupID, url string) (domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.group(groupID)
	if g == nil {
		return domain.Group{}, ErrNotFound
	}
	if g.adminID != adminID {
		return domain.Group{}, ErrForbidden
	}
	g.coverImage = url
	return s.groupView(g), nil
}

// DeleteGroup removes a group and its posts. Admin only.
func (s *State) DeleteGroup(adminID, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.group(groupID)
	if g == nil {
		return ErrNotFound
	}
	if g.adminID != adminID {
		return ErrForbidden
	}
	s.groups = slices.DeleteFunc(s.groups, func(x *groupRec) bool { return x.id == groupID })
	s.posts = slices.DeleteFunc(s.posts, func(p *postRec) bool { return p.groupID == groupID })
	return nil
}

// --- casting calls ---

// CreateCastingCall stores a casting call by authorID.
func (s *State) CreateCastingCall(authorID string, in domain.CastingCallInput) domain.CastingCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &callRec{
		authorID: authorID,
		call: domain.CastingCall{
			ID:                  newID(),
			ProjectTitle:        in.ProjectTitle,
			ProjectType:         in.ProjectType,
			RoleDescription:     in.RoleDescription,
			RoleType:            in.RoleType,
			Location:            in.Location,
			ApplicationDeadline: in.ApplicationDeadline,
			ContactEmail:        in.ContactEmail,
			CreatedAt:           s.now(),
		},
	}
	s.calls = append(s.calls, c)
	return s.callView(c)
}

func (s *State) callView(c *callRec) domain.CastingCall {
	out := c.call
	out.Author = s.ref(c.authorID)
	out.Applicants = slices.Clone(c.call.Applicants)
	return out
}

// CastingCalls lists casting calls, newest first.
func (s *State) CastingCalls() []domain.CastingCall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CastingCall, 0, len(s.calls))
	for i := len(s.calls) - 1; i >= 0; i-- {
		out = append(out, s.callView(s.calls[i]))
	}
	return out
}

// Apply records an application and notifies the call's author.
func (s *State) Apply(applicantID, callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.calls, func(c *callRec) bool { return c.call.ID == callID })
	if i < 0 {
		return ErrNotFound
	}
	c := s.calls[i]
	switch {
	case c.authorID == applicantID:
		return ErrBadRequest
	case slices.Contains(c.call.Applicants, applicantID):
		return ErrConflict
	case !c.call.ApplicationDeadline.IsZero() && !s.now().Before(c.call.ApplicationDeadline):
		return ErrForbidden
	}
	c.call.Applicants = append(c.call.Applicants, applicantID)
	s.notifications = append(s.notifications, &notificationRec{
		id:          newID(),
		applicantID: applicantID,
		recipientID: c.authorID,
		callID:      callID,
		status:      domain.StatusUnread,
		createdAt:   s.now(),
	})
	return nil
}

// Notifications returns recipientID's notifications, newest first.
func (s *State) Notifications(recipientID string) []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Notification{}
	for i := len(s.notifications) - 1; i >= 0; i-- {
		n := s.notifications[i]
		if n.recipientID != recipientID {
			continue
		}
		view := domain.Notification{
			ID:        n.id,
			Applicant: s.ref(n.applicantID),
			Recipient: domain.UserRef{ID: n.recipientID},
			Type:      domain.NotificationApplication,
			Status:    n.status,
			CreatedAt: n.createdAt,
		}
		if j := slices.IndexFunc(s.calls, func(c *callRec) bool { return c.call.ID == n.callID }); j >= 0 {
			c := s.calls[j].call
			view.CastingCall = domain.CastingCallRef{ID: c.ID, ProjectTitle: c.ProjectTitle, ProjectType: c.ProjectType, RoleType: c.RoleType}
		} else {
			view.CastingCall = domain.CastingCallRef{ID: n.callID, ProjectTitle: "Removed casting call"}
		}
		out = append(out, view)
	}
	return out
}

// --- messages ---

func (s *State) conversationView(c *conversationRec) domain.Conversation {
	out := domain.Conversation{ID: c.id, CreatedAt: c.createdAt, UpdatedAt: c.updatedAt}
	for _, p := range c.participants {
		out.Participants = append(out.Participants, s.ref(p))
	}
	return out
}

// Conversations returns userID's conversations, most recently active first.
func (s *State) Conversations(userID string) []domain.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var recs []*conversationRec
	for _, c := range s.conversations {
		if slices.Contains(c.participants, userID) {
			recs = append(recs, c)
		}
	}
	slices.SortStableFunc(recs, func(a, b *conversationRec) int { return b.updatedAt.Compare(a.updatedAt) })
	out := make([]domain.Conversation, 0, len(recs))
	for _, c := range recs {
		out = append(out, s.conversationView(c))
	}
	return out
}

// StartConversation finds or creates the conversation between two users.
func (s *State) StartConversation(userID, receiverID string) (domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID == receiverID {
		return domain.Conversation{}, ErrBadRequest
	}
	if _, ok := s.users[receiverID]; !ok {
		return domain.Conversation{}, ErrNotFound
	}
	for _, c := range s.conversations {
		if slices.Contains(c.participants, userID) && slices.Contains(c.participants, receiverID) {
			return s.conversationView(c), nil
		}
	}
	now := s.now()
	c := &conversationRec{id: newID(), participants: []string{userID, receiverID}, createdAt: now, updatedAt: now}
	s.conversations = append(s.conversations, c)
	return s.conversationView(c), nil
}

func (s *State) conversation(id string) *conversationRec {
	for _, c := range s.conversations {
		if c.id == id {
			return c
		}
	}
	return nil
}

func (s *State) messageView(m *messageRec) domain.Message {
	return domain.Message{
		ID:             m.id,
		ConversationID: m.conversationID,
		Sender:         s.ref(m.senderID),
		Receiver:       s.ref(m.receiverID),
		Text:           m.text,
		CreatedAt:      m.createdAt,
	}
}

// Messages returns a conversation's history, oldest first. Only
// participants may read it.
func (s *State) Messages(userID, conversationID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.conversation(conversationID)
	if c == nil {
		return nil, ErrNotFound
	}
	if !slices.Contains(c.participants, userID) {
		return nil, ErrForbidden
	}
	out := []domain.Message{}
	for _, m := range s.messages {
		if m.conversationID == conversationID {
			out = append(out, s.messageView(m))
		}
	}
	return out, nil
}

// SendMessage stores a message from senderID to receiverID.
func (s *State) SendMessage(senderID, conversationID, receiverID, text string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.conversation(conversationID)
	if c == nil {
		return domain.Message{}, ErrNotFound
	}
	if !slices.Contains(c.participants, senderID) || !slices.Contains(c.participants, receiverID) {
		return domain.Message{}, ErrForbidden
	}
	m := &messageRec{
		id:             newID(),
		conversationID: conversationID,
		senderID:       senderID,
		receiverID:     receiverID,
		text:           text,
		createdAt:      s.now(),
	}
	s.messages = append(s.messages, m)
	c.updatedAt = m.createdAt
	return s.messageView(m), nil
}

func without(ids []string, id string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(x string) bool { return x == id })
}
