package server

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/staffsight/ligature/internal/config"
	"github.com/staffsight/ligature/internal/core"
	"github.com/staffsight/ligature/internal/core/model"
	"github.com/staffsight/ligature/internal/core/relation"
	"github.com/staffsight/ligature/internal/graph"
)

// Server exposes attachment results and validity queries over HTTP. The core
// assumes exclusive graph access per region, so the server owns a mutex per
// region and serializes handler access through it; the core itself stays
// lock-free.
type Server struct {
	Engine *core.Engine

	cfg *config.Config
	log *zap.SugaredLogger

	mu      sync.Mutex
	regions map[string]*regionEntry
}

type regionEntry struct {
	mu     sync.Mutex
	region *core.Region
}

func NewServer(cfg *config.Config, log *zap.SugaredLogger) (*Server, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	return &Server{
		Engine:  core.NewEngine(registry, log),
		cfg:     cfg,
		log:     log,
		regions: make(map[string]*regionEntry),
	}, nil
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/regions", s.CreateRegion)
	r.POST("/regions/:id/chords", s.AddChord)
	r.POST("/regions/:id/symbols", s.AddSymbol)
	r.GET("/regions/:id/symbols/:nid/validity", s.GetValidity)
	r.GET("/regions/:id/symbols/:nid/staff", s.GetStaff)
	r.GET("/regions/:id/symbols/:nid/voice", s.GetVoice)
	r.GET("/regions/:id/graph", s.GetGraph)

	return r
}

func (s *Server) lookup(id string) *regionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regions[id]
}

type CreateRegionRequest struct {
	Profile   int `json:"profile"`
	Interline int `json:"interline"`
}

func (s *Server) CreateRegion(c *gin.Context) {
	var req CreateRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	interline := req.Interline
	if interline == 0 {
		interline = s.cfg.Scale.Interline
	}
	if interline <= 0 || req.Profile < 0 || req.Profile > relation.MaxProfile {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid interline or profile"})
		return
	}

	region := core.NewRegion(req.Profile, model.Scale{Interline: interline})

	s.mu.Lock()
	s.regions[region.ID] = &regionEntry{region: region}
	s.mu.Unlock()

	s.log.Infow("region created", "region", region.ID, "profile", req.Profile, "interline", interline)
	c.JSON(http.StatusOK, gin.H{"id": region.ID})
}

type HeadPayload struct {
	Shape  string       `json:"shape"`
	Grade  float64      `json:"grade"`
	Bounds model.Bounds `json:"bounds"`
	Staff  int          `json:"staff"`
	Voice  int          `json:"voice"`
}

type AddChordRequest struct {
	Heads []HeadPayload `json:"heads"`
}

func (s *Server) AddChord(c *gin.Context) {
	entry := s.lookup(c.Param("id"))
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown region"})
		return
	}

	var req AddChordRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Heads) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	heads := make([]*model.Interpretation, 0, len(req.Heads))
	for _, p := range req.Heads {
		shape, err := model.ParseShape(p.Shape)
		if err != nil || !shape.IsHead() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Heads must carry notehead shapes"})
			return
		}
		if p.Bounds.IsDegenerate() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Degenerate head bounds"})
			return
		}
		heads = append(heads, model.NewHead(
			shape, p.Grade, p.Bounds, &model.Staff{ID: p.Staff}, &model.Voice{ID: p.Voice}))
	}

	entry.mu.Lock()
	entry.region.AddChord(model.NewChord(heads...))
	entry.mu.Unlock()

	ids := make([]int, len(heads))
	for i, h := range heads {
		ids[i] = h.ID
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "head_ids": ids})
}

type AddSymbolRequest struct {
	Shape   string       `json:"shape"`
	Grade   float64      `json:"grade"`
	Bounds  model.Bounds `json:"bounds"`
	Profile int          `json:"profile"`
}

func (s *Server) AddSymbol(c *gin.Context) {
	entry := s.lookup(c.Param("id"))
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown region"})
		return
	}

	var req AddSymbolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	shape, err := model.ParseShape(req.Shape)
	if err != nil || !shape.IsBowing() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Shape must be a bowing indication"})
		return
	}
	if req.Profile < 0 || req.Profile > relation.MaxProfile {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile"})
		return
	}
	if req.Bounds.IsDegenerate() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Degenerate symbol bounds"})
		return
	}

	glyph := model.NewGlyph(req.Bounds)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	created, err := s.Engine.CreateValidAdded(shape, req.Grade, glyph, req.Profile, entry.region)
	if err != nil {
		s.log.Errorw("failed to attach symbol", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach symbol"})
		return
	}
	if created == nil {
		// No head in reach: the candidate is discarded, not an error.
		c.JSON(http.StatusOK, gin.H{"status": "discarded"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "linked", "id": created.ID})
}

func (s *Server) withSymbol(c *gin.Context, fn func(entry *regionEntry, id int)) {
	entry := s.lookup(c.Param("id"))
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown region"})
		return
	}

	nid, err := strconv.Atoi(c.Param("nid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid node id"})
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	fn(entry, nid)
}

func (s *Server) GetValidity(c *gin.Context) {
	s.withSymbol(c, func(entry *regionEntry, id int) {
		g := entry.region.Graph
		if !g.Contains(graph.NodeID(id)) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown node"})
			return
		}

		valid, err := s.Engine.CheckValidity(g, graph.NodeID(id))
		if err != nil {
			s.log.Errorw("validity check failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Validity check failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"valid": valid, "abnormal": !valid})
	})
}

func (s *Server) GetStaff(c *gin.Context) {
	s.withSymbol(c, func(entry *regionEntry, id int) {
		g := entry.region.Graph
		if !g.Contains(graph.NodeID(id)) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown node"})
			return
		}

		staff, err := s.Engine.Staff(g, graph.NodeID(id))
		if err != nil {
			s.log.Errorw("staff query failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Staff query failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"staff": staff})
	})
}

func (s *Server) GetVoice(c *gin.Context) {
	s.withSymbol(c, func(entry *regionEntry, id int) {
		g := entry.region.Graph
		if !g.Contains(graph.NodeID(id)) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown node"})
			return
		}

		voice, err := s.Engine.Voice(g, graph.NodeID(id))
		if err != nil {
			s.log.Errorw("voice query failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Voice query failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"voice": voice})
	})
}

func (s *Server) GetGraph(c *gin.Context) {
	entry := s.lookup(c.Param("id"))
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown region"})
		return
	}

	entry.mu.Lock()
	snap := entry.region.Graph.Snapshot()
	entry.mu.Unlock()

	c.JSON(http.StatusOK, snap)
}
