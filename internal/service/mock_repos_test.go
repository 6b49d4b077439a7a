package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"cognify/backend/internal/model"
	"cognify/backend/internal/repository"
)

// ── 共享内存存储 ──
// 所有 mock repo 共用一个 mockStore，级联与置空行为与 GORM 实现一致。
// Get 系列方法返回副本，避免业务层修改直接落到存储上。

type mockStore struct {
	seq   int
	clock time.Time

	masters      map[string]*model.Master
	orbits       map[string]*model.Orbit
	participants map[string]*model.Participant
	topics       map[string]*model.Topic
	studying     map[string][]string // topicID → participantIDs
	bosses       map[string][]string
	questions    map[string]*model.Question
	answers      map[string]*model.Answer
	quotes       map[string]*model.Quote
}

func newMockStore() *mockStore {
	return &mockStore{
		clock:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		masters:      make(map[string]*model.Master),
		orbits:       make(map[string]*model.Orbit),
		participants: make(map[string]*model.Participant),
		topics:       make(map[string]*model.Topic),
		studying:     make(map[string][]string),
		bosses:       make(map[string][]string),
		questions:    make(map[string]*model.Question),
		answers:      make(map[string]*model.Answer),
		quotes:       make(map[string]*model.Quote),
	}
}

func (s *mockStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// tick 每次调用推进一秒，保证创建时间严格递增
func (s *mockStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// newMockRepository 创建绑定到同一 mockStore 的 Repository 聚合
func newMockRepository() (*repository.Repository, *mockStore) {
	s := newMockStore()
	return &repository.Repository{
		Master:      &mockMasterRepo{s},
		Orbit:       &mockOrbitRepo{s: s},
		Participant: &mockParticipantRepo{s},
		Topic:       &mockTopicRepo{s},
		Question:    &mockQuestionRepo{s},
		Answer:      &mockAnswerRepo{s},
		Quote:       &mockQuoteRepo{s},
	}, s
}

func unique(constraint string) error {
	return &repository.UniqueViolation{Constraint: constraint, Err: gorm.ErrDuplicatedKey}
}

func matches(query string, fields ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

func sortParticipants(ps []model.Participant) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Lastname != ps[j].Lastname {
			return ps[i].Lastname < ps[j].Lastname
		}
		return ps[i].Firstname < ps[j].Firstname
	})
}

func (s *mockStore) participantList(ids []string) []model.Participant {
	out := make([]model.Participant, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.participants[id]; ok {
			out = append(out, *p)
		}
	}
	sortParticipants(out)
	return out
}

// deleteTopic 删除主题及其问题、答案和名单
func (s *mockStore) deleteTopic(id string) {
	for qid, q := range s.questions {
		if q.TopicID != id {
			continue
		}
		for aid, a := range s.answers {
			if a.QuestionID == qid {
				delete(s.answers, aid)
			}
		}
		delete(s.questions, qid)
	}
	delete(s.studying, id)
	delete(s.bosses, id)
	delete(s.topics, id)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// ── Mock MasterRepository ──

type mockMasterRepo struct{ s *mockStore }

func (m *mockMasterRepo) Create(_ context.Context, master *model.Master) error {
	for _, existing := range m.s.masters {
		if existing.Username == master.Username {
			return unique(repository.ConstraintMasterUsername)
		}
	}
	if master.MasterID == "" {
		master.MasterID = m.s.nextID("master")
	}
	master.CreatedAt = m.s.tick()
	c := *master
	m.s.masters[master.MasterID] = &c
	return nil
}

func (m *mockMasterRepo) GetByID(_ context.Context, id string) (*model.Master, error) {
	if master, ok := m.s.masters[id]; ok {
		c := *master
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMasterRepo) GetByUsername(_ context.Context, username string) (*model.Master, error) {
	for _, master := range m.s.masters {
		if master.Username == username {
			c := *master
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMasterRepo) Update(_ context.Context, master *model.Master) error {
	c := *master
	m.s.masters[master.MasterID] = &c
	return nil
}

func (m *mockMasterRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	if master, ok := m.s.masters[id]; ok {
		master.LastLogin = &at
	}
	return nil
}

// ── Mock OrbitRepository ──

type mockOrbitRepo struct {
	s *mockStore
	// createErr 非 nil 时 Create 直接返回该错误（模拟并发写入命中唯一索引）
	createErr error
}

func (m *mockOrbitRepo) Create(_ context.Context, o *model.Orbit) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.s.orbits {
		if existing.Name == o.Name {
			return unique(repository.ConstraintOrbitName)
		}
		if existing.Slug == o.Slug {
			return unique(repository.ConstraintOrbitSlug)
		}
	}
	o.OrbitID = m.s.nextID("orbit")
	o.CreatedAt = m.s.tick()
	o.UpdatedAt = o.CreatedAt
	c := *o
	m.s.orbits[o.OrbitID] = &c
	return nil
}

func (m *mockOrbitRepo) GetByID(_ context.Context, id string) (*model.Orbit, error) {
	if o, ok := m.s.orbits[id]; ok {
		c := *o
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrbitRepo) GetBySlug(_ context.Context, slug string) (*model.Orbit, error) {
	for _, o := range m.s.orbits {
		if o.Slug == slug {
			c := *o
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrbitRepo) NameExists(_ context.Context, name, excludeID string) (bool, error) {
	for id, o := range m.s.orbits {
		if id != excludeID && o.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockOrbitRepo) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	for id, o := range m.s.orbits {
		if id != excludeID && o.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockOrbitRepo) List(_ context.Context, f repository.OrbitFilter) ([]model.Orbit, int64, error) {
	var result []model.Orbit
	for _, o := range m.s.orbits {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if f.Search != "" && !matches(f.Search, o.Name, o.Description) {
			continue
		}
		result = append(result, *o)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].Name < result[j].Name
	})
	return paginate(result, f.Page), int64(len(result)), nil
}

func (m *mockOrbitRepo) Update(_ context.Context, o *model.Orbit) error {
	for id, existing := range m.s.orbits {
		if id == o.OrbitID {
			continue
		}
		if existing.Name == o.Name {
			return unique(repository.ConstraintOrbitName)
		}
		if existing.Slug == o.Slug {
			return unique(repository.ConstraintOrbitSlug)
		}
	}
	o.UpdatedAt = m.s.tick()
	c := *o
	m.s.orbits[o.OrbitID] = &c
	return nil
}

func (m *mockOrbitRepo) Delete(_ context.Context, id string) error {
	for tid, t := range m.s.topics {
		if t.OrbitID == id {
			m.s.deleteTopic(tid)
		}
	}
	delete(m.s.orbits, id)
	return nil
}

func (m *mockOrbitRepo) CountTopics(_ context.Context, orbitIDs []string) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, id := range orbitIDs {
		for _, t := range m.s.topics {
			if t.OrbitID == id {
				out[id]++
			}
		}
	}
	return out, nil
}

func (m *mockOrbitRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.s.orbits)), nil
}

// ── Mock ParticipantRepository ──

type mockParticipantRepo struct{ s *mockStore }

func (m *mockParticipantRepo) Create(_ context.Context, p *model.Participant) error {
	if err := m.checkUnique(p); err != nil {
		return err
	}
	p.ParticipantID = m.s.nextID("participant")
	p.DateJoined = m.s.tick()
	p.LastUpdated = p.DateJoined
	c := *p
	m.s.participants[p.ParticipantID] = &c
	return nil
}

// checkUnique 模拟昵称、邮箱与启用同名的唯一约束
func (m *mockParticipantRepo) checkUnique(p *model.Participant) error {
	for id, existing := range m.s.participants {
		if id == p.ParticipantID {
			continue
		}
		if existing.Nickname == p.Nickname {
			return unique(repository.ConstraintParticipantNick)
		}
		if existing.Email != nil && p.Email != nil && *existing.Email == *p.Email {
			return unique(repository.ConstraintParticipantEmail)
		}
		if existing.IsActive && p.IsActive && existing.Firstname == p.Firstname && existing.Lastname == p.Lastname {
			return unique(repository.ConstraintParticipantActive)
		}
	}
	return nil
}

func (m *mockParticipantRepo) GetByID(_ context.Context, id string) (*model.Participant, error) {
	if p, ok := m.s.participants[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockParticipantRepo) GetByIDs(_ context.Context, ids []string) ([]model.Participant, error) {
	return m.s.participantList(ids), nil
}

func (m *mockParticipantRepo) NicknameExists(_ context.Context, nickname, excludeID string) (bool, error) {
	for id, p := range m.s.participants {
		if id != excludeID && p.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockParticipantRepo) EmailExists(_ context.Context, email, excludeID string) (bool, error) {
	for id, p := range m.s.participants {
		if id != excludeID && p.Email != nil && *p.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockParticipantRepo) ActiveNameExists(_ context.Context, firstname, lastname, excludeID string) (bool, error) {
	for id, p := range m.s.participants {
		if id != excludeID && p.IsActive && p.Firstname == firstname && p.Lastname == lastname {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockParticipantRepo) List(_ context.Context, f repository.ParticipantFilter) ([]model.Participant, int64, error) {
	var result []model.Participant
	for _, p := range m.s.participants {
		if f.Position != "" && string(p.Position) != f.Position {
			continue
		}
		if f.Active != nil && p.IsActive != *f.Active {
			continue
		}
		if f.Search != "" {
			email := ""
			if p.Email != nil {
				email = *p.Email
			}
			if !matches(f.Search, p.Nickname, p.Firstname, p.Lastname, email) {
				continue
			}
		}
		result = append(result, *p)
	}
	sortParticipants(result)
	return paginate(result, f.Page), int64(len(result)), nil
}

func (m *mockParticipantRepo) ListSelectable(_ context.Context, excludeID string) ([]model.Participant, error) {
	var result []model.Participant
	for id, p := range m.s.participants {
		if p.IsActive && id != excludeID {
			result = append(result, *p)
		}
	}
	sortParticipants(result)
	return result, nil
}

func (m *mockParticipantRepo) Update(_ context.Context, p *model.Participant) error {
	if err := m.checkUnique(p); err != nil {
		return err
	}
	p.LastUpdated = m.s.tick()
	c := *p
	m.s.participants[p.ParticipantID] = &c
	return nil
}

func (m *mockParticipantRepo) Delete(_ context.Context, id string) error {
	for _, a := range m.s.answers {
		if a.ParticipantID != nil && *a.ParticipantID == id {
			a.ParticipantID = nil
		}
	}
	for tid, t := range m.s.topics {
		if t.AboutID == id {
			m.s.deleteTopic(tid)
		}
	}
	for tid := range m.s.studying {
		m.s.studying[tid] = removeID(m.s.studying[tid], id)
	}
	for tid := range m.s.bosses {
		m.s.bosses[tid] = removeID(m.s.bosses[tid], id)
	}
	delete(m.s.participants, id)
	return nil
}

func (m *mockParticipantRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.s.participants)), nil
}

// ── Mock TopicRepository ──

type mockTopicRepo struct{ s *mockStore }

// load 返回带关联的主题副本，与 GORM 预加载一致
func (m *mockTopicRepo) load(t *model.Topic) *model.Topic {
	c := *t
	if p, ok := m.s.participants[t.AboutID]; ok {
		about := *p
		c.About = &about
	}
	if o, ok := m.s.orbits[t.OrbitID]; ok {
		orbit := *o
		c.Orbit = &orbit
	}
	c.StudyingParticipants = m.s.participantList(m.s.studying[t.TopicID])
	c.Bosses = m.s.participantList(m.s.bosses[t.TopicID])
	return &c
}

func (m *mockTopicRepo) checkUnique(t *model.Topic) error {
	for id, existing := range m.s.topics {
		if id == t.TopicID {
			continue
		}
		if existing.AboutID == t.AboutID && existing.Title == t.Title {
			return unique(repository.ConstraintTopicAboutTitle)
		}
		if existing.Slug == t.Slug {
			return unique(repository.ConstraintTopicSlug)
		}
	}
	return nil
}

func (m *mockTopicRepo) store(t *model.Topic) {
	c := *t
	c.About, c.Orbit = nil, nil
	c.StudyingParticipants, c.Bosses, c.Questions = nil, nil, nil
	m.s.topics[t.TopicID] = &c
}

func (m *mockTopicRepo) Create(_ context.Context, t *model.Topic) error {
	if err := m.checkUnique(t); err != nil {
		return err
	}
	t.TopicID = m.s.nextID("topic")
	t.CreatedAt = m.s.tick()
	t.UpdatedAt = t.CreatedAt
	m.store(t)
	return nil
}

func (m *mockTopicRepo) GetByID(_ context.Context, id string) (*model.Topic, error) {
	if t, ok := m.s.topics[id]; ok {
		return m.load(t), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopicRepo) GetBySlug(_ context.Context, slug string) (*model.Topic, error) {
	for _, t := range m.s.topics {
		if t.Slug == slug {
			return m.load(t), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopicRepo) TitleExistsForAbout(_ context.Context, aboutID, title, excludeID string) (bool, error) {
	for id, t := range m.s.topics {
		if id != excludeID && t.AboutID == aboutID && t.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTopicRepo) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	for id, t := range m.s.topics {
		if id != excludeID && t.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTopicRepo) List(_ context.Context, f repository.TopicFilter) ([]model.Topic, int64, error) {
	var result []model.Topic
	for _, t := range m.s.topics {
		if f.OrbitID != "" && t.OrbitID != f.OrbitID {
			continue
		}
		if f.Active != nil && t.IsActive != *f.Active {
			continue
		}
		if f.Search != "" {
			fields := []string{t.Title, t.Description}
			if p, ok := m.s.participants[t.AboutID]; ok {
				fields = append(fields, p.Nickname, p.Firstname, p.Lastname)
			}
			if !matches(f.Search, fields...) {
				continue
			}
		}
		loaded := m.load(t)
		loaded.StudyingParticipants, loaded.Bosses = nil, nil
		result = append(result, *loaded)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return paginate(result, f.Page), int64(len(result)), nil
}

func (m *mockTopicRepo) Update(_ context.Context, t *model.Topic) error {
	if err := m.checkUnique(t); err != nil {
		return err
	}
	t.UpdatedAt = m.s.tick()
	m.store(t)
	return nil
}

func (m *mockTopicRepo) ReplaceRoster(_ context.Context, topicID string, studyingIDs, bossIDs []string) error {
	m.s.studying[topicID] = append([]string(nil), studyingIDs...)
	m.s.bosses[topicID] = append([]string(nil), bossIDs...)
	return nil
}

func (m *mockTopicRepo) Delete(_ context.Context, id string) error {
	m.s.deleteTopic(id)
	return nil
}

func (m *mockTopicRepo) CountStudying(_ context.Context, topicIDs []string) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, id := range topicIDs {
		if n := len(m.s.studying[id]); n > 0 {
			out[id] = int64(n)
		}
	}
	return out, nil
}

func (m *mockTopicRepo) CountBosses(_ context.Context, topicIDs []string) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, id := range topicIDs {
		if n := len(m.s.bosses[id]); n > 0 {
			out[id] = int64(n)
		}
	}
	return out, nil
}

func (m *mockTopicRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.s.topics)), nil
}

// ── Mock QuestionRepository ──

type mockQuestionRepo struct{ s *mockStore }

func (m *mockQuestionRepo) withAnswers(q *model.Question) *model.Question {
	c := *q
	c.Answers = nil
	for _, a := range m.s.answers {
		if a.QuestionID == q.QuestionID {
			c.Answers = append(c.Answers, *m.s.loadAnswer(a))
		}
	}
	sort.Slice(c.Answers, func(i, j int) bool {
		if c.Answers[i].Order != c.Answers[j].Order {
			return c.Answers[i].Order < c.Answers[j].Order
		}
		return c.Answers[i].CreatedAt.Before(c.Answers[j].CreatedAt)
	})
	return &c
}

func (m *mockQuestionRepo) Create(_ context.Context, q *model.Question) error {
	q.QuestionID = m.s.nextID("question")
	q.CreatedAt = m.s.tick()
	q.UpdatedAt = q.CreatedAt
	c := *q
	c.Answers = nil
	m.s.questions[q.QuestionID] = &c
	return nil
}

func (m *mockQuestionRepo) GetByID(_ context.Context, id string) (*model.Question, error) {
	if q, ok := m.s.questions[id]; ok {
		return m.withAnswers(q), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQuestionRepo) GetForUpdate(_ context.Context, id string) (*model.Question, error) {
	if q, ok := m.s.questions[id]; ok {
		c := *q
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQuestionRepo) ListByTopic(_ context.Context, topicID string) ([]model.Question, error) {
	var result []model.Question
	for _, q := range m.s.questions {
		if q.TopicID == topicID {
			result = append(result, *m.withAnswers(q))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockQuestionRepo) Update(_ context.Context, q *model.Question) error {
	q.UpdatedAt = m.s.tick()
	c := *q
	c.Answers = nil
	m.s.questions[q.QuestionID] = &c
	return nil
}

func (m *mockQuestionRepo) Delete(_ context.Context, id string) error {
	for aid, a := range m.s.answers {
		if a.QuestionID == id {
			delete(m.s.answers, aid)
		}
	}
	delete(m.s.questions, id)
	return nil
}

func (m *mockQuestionRepo) CountByTopics(_ context.Context, topicIDs []string) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, id := range topicIDs {
		for _, q := range m.s.questions {
			if q.TopicID == id {
				out[id]++
			}
		}
	}
	return out, nil
}

func (m *mockQuestionRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.s.questions)), nil
}

// ── Mock AnswerRepository ──

type mockAnswerRepo struct{ s *mockStore }

// loadAnswer 返回带作者的答案副本
func (s *mockStore) loadAnswer(a *model.Answer) *model.Answer {
	c := *a
	c.Participant = nil
	if a.ParticipantID != nil {
		if p, ok := s.participants[*a.ParticipantID]; ok {
			pc := *p
			c.Participant = &pc
		}
	}
	return &c
}

// checkSingleCorrect 模拟 uq_answers_single_correct 部分唯一索引
func (m *mockAnswerRepo) checkSingleCorrect(a *model.Answer) error {
	if !a.IsCorrect {
		return nil
	}
	for id, existing := range m.s.answers {
		if id != a.AnswerID && existing.QuestionID == a.QuestionID && existing.IsCorrect {
			return unique(repository.ConstraintAnswerCorrect)
		}
	}
	return nil
}

func (m *mockAnswerRepo) Create(_ context.Context, a *model.Answer) error {
	if err := m.checkSingleCorrect(a); err != nil {
		return err
	}
	a.AnswerID = m.s.nextID("answer")
	a.CreatedAt = m.s.tick()
	a.UpdatedAt = a.CreatedAt
	c := *a
	c.Participant = nil
	m.s.answers[a.AnswerID] = &c
	return nil
}

func (m *mockAnswerRepo) GetByID(_ context.Context, id string) (*model.Answer, error) {
	if a, ok := m.s.answers[id]; ok {
		return m.s.loadAnswer(a), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAnswerRepo) Update(_ context.Context, a *model.Answer) error {
	if err := m.checkSingleCorrect(a); err != nil {
		return err
	}
	a.UpdatedAt = m.s.tick()
	c := *a
	c.Participant = nil
	m.s.answers[a.AnswerID] = &c
	return nil
}

func (m *mockAnswerRepo) Delete(_ context.Context, id string) error {
	delete(m.s.answers, id)
	return nil
}

func (m *mockAnswerRepo) ClearCorrect(_ context.Context, questionID, exceptID string) error {
	for id, a := range m.s.answers {
		if a.QuestionID == questionID && id != exceptID {
			a.IsCorrect = false
		}
	}
	return nil
}

// ── Mock QuoteRepository ──

type mockQuoteRepo struct{ s *mockStore }

func (m *mockQuoteRepo) Create(_ context.Context, q *model.Quote) error {
	q.QuoteID = m.s.nextID("quote")
	q.CreatedAt = m.s.tick()
	c := *q
	m.s.quotes[q.QuoteID] = &c
	return nil
}

func (m *mockQuoteRepo) ListActive(_ context.Context, limit int) ([]model.Quote, error) {
	var result []model.Quote
	for _, q := range m.s.quotes {
		if q.IsActive {
			result = append(result, *q)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ── 分页 ──

func paginate[T any](items []T, p repository.Page) []T {
	if p.Limit <= 0 {
		return items
	}
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}
