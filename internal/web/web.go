// Package web serves the HTTP side of the service: health, JSON availability,
// exports and the grpc-web bridge.
package web

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"slot-booking-api/internal/bookingv1"
	"slot-booking-api/internal/export"
	"slot-booking-api/internal/model"
	"slot-booking-api/internal/reconcile"
	"slot-booking-api/internal/slots"
	"slot-booking-api/internal/timefmt"
)

type Server struct {
	view     *reconcile.Reconciler
	schedule slots.Schedule
	loc      *time.Location
	log      *zap.Logger
}

func New(view *reconcile.Reconciler, schedule slots.Schedule, loc *time.Location, log *zap.Logger) *Server {
	if loc == nil {
		loc = time.UTC
	}
	return &Server{view: view, schedule: schedule, loc: loc, log: log}
}

// Router builds the gin engine. grpcWeb may be nil.
func (s *Server) Router(grpcWeb http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.log))

	r.GET("/healthz", s.health)

	// grpc-web answers its own preflight
	if grpcWeb != nil {
		h := gin.WrapH(grpcWeb)
		path := "/" + bookingv1.ServiceName + "/:method"
		r.POST(path, h)
		r.OPTIONS(path, h)
	}

	open := cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	})

	api := r.Group("/api", open)
	{
		api.GET("/schedule", s.getSchedule)
		api.GET("/days/:date/slots", s.daySlots)
		api.GET("/stats", s.stats)
	}

	exp := r.Group("/export", open)
	{
		exp.GET("/reservations.csv", s.exportCSV)
		exp.GET("/reservations.ics", s.exportICS)
	}
	return r
}

func (s *Server) health(c *gin.Context) {
	synced, at := s.view.Synced()
	body := gin.H{
		"status":       "ok",
		"synced":       synced,
		"reservations": len(s.view.Snapshot()),
	}
	if synced {
		body["updatedAt"] = at.UnixMilli()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) getSchedule(c *gin.Context) {
	type window struct {
		Name  string `json:"name"`
		Label string `json:"label"`
	}
	windows := make([]window, 0, len(s.schedule.Windows))
	for _, w := range s.schedule.Windows {
		windows = append(windows, window{Name: w.Name, Label: w.Label()})
	}
	c.JSON(http.StatusOK, gin.H{
		"days":            s.schedule.Days,
		"intervalMinutes": s.schedule.IntervalMinutes,
		"timezone":        s.loc.String(),
		"windows":         windows,
	})
}

func (s *Server) daySlots(c *gin.Context) {
	date := timefmt.NormalizeDate(c.Param("date"))
	if !s.schedule.HasDay(date) {
		c.JSON(http.StatusNotFound, gin.H{"error": "date is not open for booking"})
		return
	}
	day := slots.Resolve(date, s.view.Snapshot(), s.schedule)
	c.JSON(http.StatusOK, gin.H{
		"date":    day.Date,
		"free":    day.Free(),
		"windows": day.Windows,
	})
}

type statsSlot struct {
	Time   string             `json:"time"`
	Label  string             `json:"label"`
	Holder *model.Reservation `json:"holder"`
}

type statsDay struct {
	Date   string      `json:"date"`
	Booked int         `json:"booked"`
	Slots  []statsSlot `json:"slots"`
}

// stats is the who-holds-what grid across every configured day.
func (s *Server) stats(c *gin.Context) {
	regs := s.view.Snapshot()
	days := make([]statsDay, 0, len(s.schedule.Days))
	for _, d := range s.schedule.Days {
		day := statsDay{Date: timefmt.NormalizeDate(d), Slots: []statsSlot{}}
		for _, w := range s.schedule.Windows {
			for _, slot := range slots.Generate(w.StartHour, w.StartMinute, w.EndHour, w.EndMinute, s.schedule.IntervalMinutes, nil) {
				row := statsSlot{Time: slot.StartTime, Label: slot.Label}
				if r, ok := slots.Holder(day.Date, slot.StartTime, regs); ok {
					row.Holder = &r
					day.Booked++
				}
				day.Slots = append(day.Slots, row)
			}
		}
		days = append(days, day)
	}
	c.JSON(http.StatusOK, gin.H{"total": len(regs), "days": days})
}

func (s *Server) exportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, s.view.Snapshot()); err != nil {
		s.log.Error("csv export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	name := "reservations_" + time.Now().In(s.loc).Format("2006-01-02") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) exportICS(c *gin.Context) {
	var buf bytes.Buffer
	slotLength := time.Duration(s.schedule.IntervalMinutes) * time.Minute
	if err := export.WriteICS(&buf, s.view.Snapshot(), slotLength, s.loc); err != nil {
		s.log.Error("ics export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="reservations.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("client", c.ClientIP()),
		)
	}
}
