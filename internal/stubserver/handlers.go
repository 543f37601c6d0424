package stubserver

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vidconv/vidconv/internal/urlcheck"
	"github.com/vidconv/vidconv/pkg/models"
)

// resolutions every stub video claims to be available in.
var stubResolutions = []string{"360p", "480p", "720p", "1080p"}

const formatsCacheTTL = 5 * time.Minute

func (s *Server) statusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) loginHandler(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, ok := s.store.userByName(req.Username)
	if !ok || user.Password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}
	if !user.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account is disabled"})
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{Token: token})
}

func (s *Server) meHandler(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, models.MeResponse{
		User:   *user,
		Videos: s.store.videosByUser(user.ID),
	})
}

func (s *Server) listUsersHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.listUsers())
}

func (s *Server) createUserHandler(c *gin.Context) {
	var req struct {
		Username string          `json:"username"`
		Password string          `json:"password"`
		Role     models.UserRole `json:"role"`
		Active   *bool           `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be admin or guest"})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	if _, ok := s.store.addUser(req.Username, req.Password, req.Role, active); !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user created"})
}

func (s *Server) getUserHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}
	user, ok := s.store.userByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) updateUserHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	var req struct {
		Username string          `json:"username"`
		Password string          `json:"password"`
		Role     models.UserRole `json:"role"`
		Active   bool            `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be admin or guest"})
		return
	}

	if !s.store.updateUser(id, req.Username, req.Password, req.Role, req.Active) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user updated"})
}

func (s *Server) deleteUserHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}
	force := c.Query("forceDelete") == "true"

	deleted, hasVideos := s.store.deleteUser(id, force)
	if hasVideos {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user has videos; pass forceDelete=true"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) userVideosHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}
	if _, ok := s.store.userByID(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, s.store.videosByUser(id))
}

func (s *Server) insertVideoHandler(c *gin.Context) {
	var req models.InsertVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !urlcheck.IsValidURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid URL"})
		return
	}

	// Non-YouTube URLs get a random identifier so any URL works against the
	// stub.
	externalID, ok := urlcheck.YouTubeID(req.URL)
	if !ok {
		externalID = uuid.NewString()[:11]
	}

	user := currentUser(c)
	video, created := s.store.addVideo(externalID, "Video "+externalID, user.ID, c.ClientIP())
	if !created {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "video already exists",
			"videoID": video.VideoID,
		})
		return
	}

	c.JSON(http.StatusOK, models.InsertedVideo{
		Message: "video added",
		VideoID: video.VideoID,
	})
}

func (s *Server) getVideoHandler(c *gin.Context) {
	video, ok := s.store.video(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	c.JSON(http.StatusOK, video)
}

func (s *Server) listVideosHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.listVideos())
}

func (s *Server) deleteVideoHandler(c *gin.Context) {
	if !s.store.deleteVideo(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// formatsHandler serves both the plain GET and the multipart POST variant
// (the latter carries an optional cookies file, which the stub ignores
// beyond accepting it).
func (s *Server) formatsHandler(c *gin.Context) {
	videoID := c.Param("id")
	if _, ok := s.store.video(videoID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}

	cacheKey := "formats:" + videoID
	var resolutions []string
	found, err := s.cache.Get(c.Request.Context(), cacheKey, &resolutions)
	if err != nil || !found {
		resolutions = stubResolutions
		if err := s.cache.Set(c.Request.Context(), cacheKey, resolutions, formatsCacheTTL); err != nil {
			s.logger.WithError(err).Warn("failed to cache formats")
		}
	}

	c.JSON(http.StatusOK, models.FormatsResponse{Resolutions: resolutions})
}

func (s *Server) processHandler(c *gin.Context) {
	videoID := c.Param("id")
	if _, ok := s.store.video(videoID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}

	resolution := c.PostForm("Resolution")
	isAudio, _ := strconv.ParseBool(c.PostForm("IsAudio"))
	if isAudio {
		resolution = models.AudioResolutionKey
	}
	if resolution == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Resolution is required"})
		return
	}

	record, started := s.store.startJob(videoID, resolution)
	if !started {
		c.JSON(http.StatusConflict, gin.H{"error": "conversion already in progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "processing started",
		"status":  record,
	})
}

func (s *Server) jobStatusHandler(c *gin.Context) {
	videoID := c.Param("id")
	if _, ok := s.store.video(videoID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	c.JSON(http.StatusOK, s.store.statusList(videoID))
}

func (s *Server) downloadHandler(c *gin.Context) {
	videoID := c.Param("id")
	resolution := c.Query("resolution")

	record, ok := s.store.statusFor(videoID, resolution)
	if !ok || record.Status != models.JobStatusCompleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed conversion for this resolution"})
		return
	}

	ext := "mp4"
	if resolution == models.AudioResolutionKey {
		ext = "mp3"
	}
	filename := fmt.Sprintf("%s_%s.%s", videoID, resolution, ext)
	payload := []byte("stub media payload for " + filename)

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/octet-stream", payload)
}

func (s *Server) cookieStatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.cookieStatus())
}

func (s *Server) uploadCookiesHandler(c *gin.Context) {
	file, _, err := c.Request.FormFile("cookies")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cookies file is required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, 1<<20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read cookies file"})
		return
	}

	s.store.setCookies(content)
	c.JSON(http.StatusOK, gin.H{"message": "cookies uploaded"})
}

func (s *Server) deleteCookiesHandler(c *gin.Context) {
	if !s.store.deleteCookies() {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cookies file uploaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
