package control

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lixenwraith/ambient/audio"
	"github.com/lixenwraith/ambient/gesture"
	"github.com/lixenwraith/ambient/sfx"
)

const maxBodySize = 1 << 16

// sceneInfo describes one scene table entry
type sceneInfo struct {
	Key        string   `json:"key"`
	Generators []string `json:"generators"`
}

// status is the body returned by state-changing calls
type status struct {
	Scene       string  `json:"scene"`
	State       string  `json:"state"`
	Backend     string  `json:"backend,omitempty"`
	Generations int     `json:"generations"`
	Voices      int     `json:"voices"`
	LiveNodes   int     `json:"liveNodes"`
	Reduction   float64 `json:"reductionDb"`
}

func (s *Server) snapshot() status {
	st := s.engine.Stats()
	return status{
		Scene:       st.Scene,
		State:       st.State,
		Backend:     st.Backend,
		Generations: st.Generations,
		Voices:      st.Voices,
		LiveNodes:   st.LiveNodes,
		Reduction:   st.Reduction,
	}
}

// handleHealth reports engine state
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.snapshot())
}

// handleScenes lists scene keys with their resolved generators
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	table := s.engine.Table()
	keys := table.Keys()
	out := make([]sceneInfo, 0, len(keys))
	for _, key := range keys {
		out = append(out, sceneInfo{Key: key, Generators: table.Resolve(key)})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// handleGesture forwards a user activation; ?kind=key marks a key press
func (s *Server) handleGesture(w http.ResponseWriter, r *http.Request) {
	kind := gesture.PointerDown
	if r.URL.Query().Get("kind") == "key" {
		kind = gesture.KeyDown
	}
	s.engine.Gestures().Fire(kind)
	s.writeJSON(w, http.StatusOK, s.snapshot())
}

// handleVolumes applies a partial volume update
func (s *Server) handleVolumes(w http.ResponseWriter, r *http.Request) {
	var u audio.VolumeUpdate
	if !s.decode(w, r, &u) {
		return
	}
	s.engine.SetVolumes(u)
	s.writeJSON(w, http.StatusOK, s.snapshot())
}

// handleSettings applies the state store's settings object
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var set audio.Settings
	if !s.decode(w, r, &set) {
		return
	}
	s.engine.ApplySettings(set)
	s.writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"scene": s.engine.CurrentAmbient()})
}

// handleStart switches the scene ambience
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.engine.StartAmbient(chi.URLParam(r, "key"))
	s.writeJSON(w, http.StatusAccepted, s.snapshot())
}

// handleStop silences ambience; ?fade=false cuts immediately
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	fade := true
	if v := r.URL.Query().Get("fade"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, "fade must be a boolean", http.StatusBadRequest)
			return
		}
		fade = parsed
	}
	s.engine.StopAmbient(fade)
	s.writeJSON(w, http.StatusAccepted, s.snapshot())
}

// handleSfx fires a cue; unknown kinds play the click
func (s *Server) handleSfx(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	s.engine.PlaySfx(kind)
	s.writeJSON(w, http.StatusAccepted, map[string]string{"kind": string(sfx.Normalize(kind))})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, code int) {
	s.writeJSON(w, code, map[string]string{"error": message})
}
