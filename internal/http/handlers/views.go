package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Lauda128109319/food-alert/internal/cache"
	"github.com/Lauda128109319/food-alert/internal/config"
	"github.com/Lauda128109319/food-alert/internal/session"
	"github.com/Lauda128109319/food-alert/internal/view"
	"github.com/gin-gonic/gin"
)

// ViewsHandler serves rendered snapshots and runs the command loop. One
// session per username, created lazily and kept for the process lifetime;
// the cursor in it is the user's "currently displayed month".
type ViewsHandler struct {
	repo  session.FoodsRepo
	views *cache.Cache
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*session.Session
}

func NewViewsHandler(repo session.FoodsRepo, views *cache.Cache, now func() time.Time) *ViewsHandler {
	if now == nil {
		now = time.Now
	}

	return &ViewsHandler{
		repo:     repo,
		views:    views,
		now:      now,
		sessions: make(map[string]*session.Session),
	}
}

func (h *ViewsHandler) sessionFor(owner string) *session.Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[owner]

	if !ok {
		s = session.New(h.repo, owner, h.now)
		h.sessions[owner] = s
	}

	return s
}

func cursorKey(owner string, c view.Cursor) string {
	return cache.Key(owner, fmt.Sprintf("%04d-%02d", c.Year, int(c.Month)))
}

// GET /api/views?username=[&year=&month=] renders the snapshot for the
// requested month, defaulting to the user's displayed month. Snapshots are
// cached briefly per owner+month.
func (h *ViewsHandler) Get(ctx *gin.Context) {
	owner := ctx.Query("username")

	if owner == "" {
		RespondBadRequest(ctx, "username query parameter is required", nil)
		return
	}

	if !requireOwner(ctx, owner) {
		return
	}

	s := h.sessionFor(owner)

	cursor, ok, err := cursorFromQuery(ctx)

	if err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return
	}

	if !ok {
		cursor = s.Cursor()
	}

	key := cursorKey(owner, cursor)

	if h.views != nil {
		if cached, okCache := h.views.Get(key); okCache {
			ctx.JSON(http.StatusOK, cached)
			return
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	var snap view.Snapshot

	if ok {
		// explicit month in the query renders one-off without touching the
		// session cursor
		items, listErr := h.repo.ListByOwner(cctx, owner)

		if listErr != nil {
			RespondInternal(ctx, "Could not render views")
			return
		}

		snap = view.Render(items, view.State{Now: h.now(), Cursor: cursor})
	} else {
		snap, err = s.Refresh(cctx)

		if err != nil {
			RespondInternal(ctx, "Could not render views")
			return
		}
	}

	if h.views != nil {
		h.views.Set(key, snap)
	}

	ctx.JSON(http.StatusOK, snap)
}

func cursorFromQuery(ctx *gin.Context) (view.Cursor, bool, error) {
	yearStr := ctx.Query("year")
	monthStr := ctx.Query("month")

	if yearStr == "" && monthStr == "" {
		return view.Cursor{}, false, nil
	}

	year, err := strconv.Atoi(yearStr)

	if err != nil || year < 1 {
		return view.Cursor{}, false, fmt.Errorf("year must be a positive integer")
	}

	month, err := strconv.Atoi(monthStr)

	if err != nil || month < 1 || month > 12 {
		return view.Cursor{}, false, fmt.Errorf("month must be between 1 and 12")
	}

	return view.Cursor{Year: year, Month: time.Month(month)}, true, nil
}

type CommandRequest struct {
	Username string  `json:"username" binding:"required"`
	Type     string  `json:"type" binding:"required,oneof=add edit consume reschedule clear_all month"`
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Qty      float64 `json:"qty"`
	Date     int64   `json:"date"`  // epoch ms display expiry / drop date
	Delta    int     `json:"delta"` // month moves only
}

func (r CommandRequest) command() (session.Command, error) {
	switch r.Type {
	case "add":
		if r.ID == "" || r.Name == "" || r.Qty <= 0 || r.Date == 0 {
			return nil, fmt.Errorf("add requires id, name, qty and date")
		}

		return session.AddRequested{
			ID:            r.ID,
			Name:          r.Name,
			Qty:           r.Qty,
			DisplayExpiry: time.UnixMilli(r.Date).UTC(),
		}, nil

	case "edit":
		if r.ID == "" || r.Name == "" || r.Qty <= 0 || r.Date == 0 {
			return nil, fmt.Errorf("edit requires id, name, qty and date")
		}

		return session.EditRequested{
			ID:            r.ID,
			Name:          r.Name,
			Qty:           r.Qty,
			DisplayExpiry: time.UnixMilli(r.Date).UTC(),
		}, nil

	case "consume":
		if r.ID == "" {
			return nil, fmt.Errorf("consume requires id")
		}

		return session.ConsumeRequested{ID: r.ID}, nil

	case "reschedule":
		if r.ID == "" || r.Date == 0 {
			return nil, fmt.Errorf("reschedule requires id and date")
		}

		return session.RescheduleRequested{
			ID:   r.ID,
			Date: time.UnixMilli(r.Date).UTC(),
		}, nil

	case "clear_all":
		return session.ClearAllRequested{}, nil

	case "month":
		if r.Delta == 0 {
			return nil, fmt.Errorf("month requires a non-zero delta")
		}

		return session.MonthChanged{Delta: r.Delta}, nil
	}

	return nil, fmt.Errorf("unknown command type %q", r.Type)
}

// POST /api/commands applies one command and answers with the fresh snapshot.
func (h *ViewsHandler) Apply(ctx *gin.Context) {
	var req CommandRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cmd, err := req.command()

	if err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return
	}

	if !requireOwner(ctx, req.Username) {
		return
	}

	s := h.sessionFor(req.Username)

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	snap, err := s.Apply(cctx, cmd)

	if err != nil {
		RespondInternal(ctx, "Could not apply command")
		return
	}

	if h.views != nil {
		// every command except a pure month move can change item state
		if req.Type == "month" {
			h.views.Set(cursorKey(req.Username, s.Cursor()), snap)
		} else {
			h.views.InvalidateOwner(req.Username)
			h.views.Set(cursorKey(req.Username, s.Cursor()), snap)
		}
	}

	ctx.JSON(http.StatusOK, snap)
}
