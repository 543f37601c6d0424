package stubserver

import (
	"math/rand"
	"sync"
	"time"

	"github.com/vidconv/vidconv/internal/metrics"
	"github.com/vidconv/vidconv/pkg/models"
)

// store holds the stub's in-memory state. Jobs are simulated: a submitted
// conversion flips from processing to a terminal state after a fixed delay.
type store struct {
	mu sync.Mutex

	nextUserID   int64
	nextVideoID  int64
	nextStatusID int64

	users    map[int64]*models.User
	videos   map[string]*models.Video            // keyed by external video_id
	statuses map[string][]*models.ProcessingStatus // keyed by external video_id

	cookies *cookieFile

	processingDuration time.Duration
	failureRate        float64

	timers []*time.Timer
}

type cookieFile struct {
	content    []byte
	uploadedAt time.Time
}

func newStore(processingDuration time.Duration, failureRate float64) *store {
	s := &store{
		nextUserID:         1,
		nextVideoID:        1,
		nextStatusID:       1,
		users:              make(map[int64]*models.User),
		videos:             make(map[string]*models.Video),
		statuses:           make(map[string][]*models.ProcessingStatus),
		processingDuration: processingDuration,
		failureRate:        failureRate,
	}

	// Seeded admin account so the stub is usable immediately.
	s.addUserLocked("admin", "admin", models.UserRoleAdmin, true)
	return s
}

// close cancels pending job timers.
func (s *store) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

func (s *store) addUserLocked(username, password string, role models.UserRole, active bool) *models.User {
	now := time.Now()
	u := &models.User{
		ID:        s.nextUserID,
		Username:  username,
		Password:  password,
		Role:      role,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextUserID++
	s.users[u.ID] = u
	return u
}

func (s *store) addUser(username, password string, role models.UserRole, active bool) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return nil, false
		}
	}
	return s.addUserLocked(username, password, role, active), true
}

func (s *store) userByName(username string) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}
	return nil, false
}

func (s *store) userByID(id int64) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *store) listUsers() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out
}

func (s *store) updateUser(id int64, username, password string, role models.UserRole, active bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false
	}
	u.Username = username
	u.Password = password
	u.Role = role
	u.Active = active
	u.UpdatedAt = time.Now()
	return true
}

func (s *store) deleteUser(id int64, force bool) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, false
	}

	var owned []string
	for vid, v := range s.videos {
		if v.UserID == id {
			owned = append(owned, vid)
		}
	}
	if len(owned) > 0 && !force {
		return false, true // exists but has videos and no force flag
	}
	for _, vid := range owned {
		delete(s.videos, vid)
		delete(s.statuses, vid)
	}
	delete(s.users, u.ID)
	return true, false
}

func (s *store) addVideo(externalID, title string, userID int64, ip string) (*models.Video, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.videos[externalID]; ok {
		return existing, false
	}

	now := time.Now()
	v := &models.Video{
		ID:            s.nextVideoID,
		VideoID:       externalID,
		Title:         title,
		UserID:        userID,
		RequestedByIP: ip,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.nextVideoID++
	s.videos[externalID] = v
	return v, true
}

func (s *store) video(externalID string) (*models.Video, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[externalID]
	return v, ok
}

func (s *store) listVideos() []models.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Video, 0, len(s.videos))
	for _, v := range s.videos {
		out = append(out, *v)
	}
	return out
}

func (s *store) videosByUser(userID int64) []models.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Video
	for _, v := range s.videos {
		if v.UserID == userID {
			out = append(out, *v)
		}
	}
	return out
}

func (s *store) deleteVideo(externalID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[externalID]; !ok {
		return false
	}
	delete(s.videos, externalID)
	delete(s.statuses, externalID)
	return true
}

// startJob creates a processing record for (videoID, resolution) and
// schedules its terminal transition. Submitting a job for a key that is
// still processing reports a conflict.
func (s *store) startJob(videoID, resolution string) (*models.ProcessingStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var record *models.ProcessingStatus
	for _, st := range s.statuses[videoID] {
		if st.Resolution != resolution {
			continue
		}
		if st.Status == models.JobStatusProcessing {
			return nil, false
		}
		// Resubmitting a finished conversion reuses its record so each
		// (video, resolution) pair keeps a single row.
		record = st
		record.Status = models.JobStatusProcessing
		record.Path = ""
		record.UpdatedAt = now
		break
	}
	if record == nil {
		record = &models.ProcessingStatus{
			ID:         s.nextStatusID,
			VideoID:    videoID,
			Resolution: resolution,
			Status:     models.JobStatusProcessing,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		s.nextStatusID++
		s.statuses[videoID] = append(s.statuses[videoID], record)
	}
	metrics.RecordJobCreated(resolution)

	id := record.ID
	timer := time.AfterFunc(s.processingDuration, func() {
		s.finishJob(videoID, id)
	})
	s.timers = append(s.timers, timer)

	return record, true
}

// finishJob flips a processing record to its terminal state. Records already
// terminal are left alone: transitions are monotonic.
func (s *store) finishJob(videoID string, statusID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.statuses[videoID] {
		if st.ID != statusID || st.Status != models.JobStatusProcessing {
			continue
		}
		st.Status = models.JobStatusCompleted
		if s.failureRate > 0 && rand.Float64() < s.failureRate {
			st.Status = models.JobStatusFailed
		}
		if st.Status == models.JobStatusCompleted {
			st.Path = "/converted/" + videoID + "_" + st.Resolution
		}
		st.UpdatedAt = time.Now()
		metrics.RecordJobFinished(string(st.Status))
		return
	}
}

func (s *store) statusList(videoID string) []models.ProcessingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ProcessingStatus, 0, len(s.statuses[videoID]))
	for _, st := range s.statuses[videoID] {
		out = append(out, *st)
	}
	return out
}

func (s *store) statusFor(videoID, resolution string) (*models.ProcessingStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.statuses[videoID] {
		if st.Resolution == resolution {
			copied := *st
			return &copied, true
		}
	}
	return nil, false
}

func (s *store) setCookies(content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = &cookieFile{content: content, uploadedAt: time.Now()}
}

func (s *store) cookieStatus() models.CookieStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cookies == nil {
		return models.CookieStatus{Exists: false}
	}
	return models.CookieStatus{
		Exists:       true,
		LastModified: s.cookies.uploadedAt,
		AbsolutePath: "/data/cookies.txt",
		SizeBytes:    int64(len(s.cookies.content)),
	}
}

func (s *store) deleteCookies() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cookies == nil {
		return false
	}
	s.cookies = nil
	return true
}
