package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/bitsctl/internal/inspect"
	"github.com/danmuck/bitsctl/internal/render"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "0.1.0"

type decodeRequest struct {
	Hex string `json:"hex"`
}

type decodeResponse struct {
	VersionSum   int         `json:"version_sum"`
	Packets      int         `json:"packets"`
	Depth        int         `json:"depth"`
	Bits         int         `json:"bits"`
	TrailingBits int         `json:"trailing_bits"`
	Tree         render.Node `json:"tree"`
}

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": version,
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"service": s.Name,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.POST("/v1/decode", s.handleDecode)
}

func (s *Server) handleDecode(c *gin.Context) {
	hex, status, err := s.readHex(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	report, err := s.inspector.Inspect("http", hex)
	if err != nil {
		kind := inspect.Classify(err)
		c.JSON(decodeStatus(kind), gin.H{"error": err.Error(), "kind": kind})
		return
	}

	c.JSON(http.StatusOK, decodeResponse{
		VersionSum:   report.VersionSum,
		Packets:      report.Packets,
		Depth:        report.Depth,
		Bits:         report.Bits,
		TrailingBits: report.Trailing,
		Tree:         render.Tree(report.Root),
	})
}

var errMissingHex = errors.New("request body has no hex field")

// readHex accepts a JSON body {"hex": "..."} or a plain-text body.
func (s *Server) readHex(c *gin.Context) (string, int, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBody)

	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req decodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return "", bodyStatus(err), err
		}
		hex := strings.TrimSpace(req.Hex)
		if hex == "" {
			return "", http.StatusBadRequest, errMissingHex
		}
		return hex, 0, nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", bodyStatus(err), err
	}
	return strings.TrimSpace(string(body)), 0, nil
}

func bodyStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func decodeStatus(kind string) int {
	switch kind {
	case inspect.KindInvalidHex, inspect.KindEmpty:
		return http.StatusBadRequest
	case inspect.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case inspect.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}
