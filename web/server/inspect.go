package server

import (
	"math"
	"net/http"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/sampler"
	"github.com/labstack/echo/v4"
)

// InspectResponse represents the JSON response for pixel inspection
type InspectResponse struct {
	Hit           bool       `json:"hit"`
	GeometryType  string     `json:"geometryType,omitempty"`
	GeometryID    int        `json:"geometryId"`
	Lobes         []string   `json:"lobes,omitempty"`
	Boundary      bool       `json:"boundary,omitempty"`
	Light         string     `json:"light,omitempty"`
	Point         [3]float64 `json:"point"`
	Normal        [3]float64 `json:"normal"`
	Distance      float64    `json:"distance"`
	FrontFace     bool       `json:"frontFace"`
	Samples       uint32     `json:"samples"`
	Mean          [3]float64 `json:"mean"`
	AvgPathLength float64    `json:"avgPathLength"`
}

func vec(v core.Vec3) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// handleInspect reports what the camera sees through a pixel together with
// the pixel's accumulated estimate
func (s *Server) handleInspect(c echo.Context) error {
	cfg := s.session.Config()
	x, err := parseIntParam(c, "x", 0, 0, cfg.Width-1)
	if err != nil {
		return err
	}
	y, err := parseIntParam(c, "y", 0, 0, cfg.Height-1)
	if err != nil {
		return err
	}

	sc := s.session.Scene()
	resp := InspectResponse{GeometryID: -1}

	ray := sc.Camera.CalculateRayFromPixel(x, y, sampler.New(uint64(x), uint64(y)))
	if hit, ok := sc.Intersect(ray, math.Inf(1)); ok {
		si := sc.Interaction(hit, ray)
		geom := sc.Geometry(hit.GeometryID)
		mat := sc.Material(hit.GeometryID)

		resp.Hit = true
		resp.GeometryID = hit.GeometryID
		resp.GeometryType = geom.Kind.String()
		resp.Boundary = mat.Boundary
		resp.Point = vec(si.Point)
		resp.Normal = vec(si.GeometricNormal)
		resp.Distance = hit.Distance
		resp.FrontFace = si.FrontFace()
		for i := 0; i < mat.BSDF.NumLobes(); i++ {
			resp.Lobes = append(resp.Lobes, mat.BSDF.Lobe(i).Kind.String())
		}
		if l, _, ok := sc.LightFor(hit.GeometryID); ok {
			resp.Light = l.Kind.String()
		}
	}

	s.consumer.Lock()
	defer s.consumer.Unlock()
	db := s.session.Buffers()
	if fb := db.Acquire(); fb != nil {
		p := fb.At(x, y)
		db.Release(fb)
		resp.Samples = p.SampleCount
		resp.Mean = vec(p.Mean())
		if p.SampleCount > 0 {
			resp.AvgPathLength = float64(p.BounceSum) / float64(p.SampleCount)
		}
	}
	return c.JSON(http.StatusOK, resp)
}
