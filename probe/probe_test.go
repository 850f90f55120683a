package probe

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/lixenwraith/ambient/generator"
	"github.com/lixenwraith/ambient/graph"
	"github.com/lixenwraith/ambient/schedule"
)

const rate = 16000

func sine(freq, amp float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return out
}

func TestAnalyzeSine(t *testing.T) {
	r := Analyze(sine(440, 0.5, rate), rate)

	binHz := float64(rate) / WindowSize
	if math.Abs(r.DominantHz-440) > binHz {
		t.Errorf("Expected dominant near 440 Hz, got %f", r.DominantHz)
	}
	if math.Abs(r.Peak-0.5) > 1e-3 {
		t.Errorf("Expected peak 0.5, got %f", r.Peak)
	}
	if math.Abs(r.RMS-0.5/math.Sqrt2) > 1e-3 {
		t.Errorf("Expected rms %f, got %f", 0.5/math.Sqrt2, r.RMS)
	}
	if r.Mid < 0.8 {
		t.Errorf("Expected energy in the mid band, got %+v", r)
	}
	t.Logf("%s", r)
}

func TestAnalyzeSilence(t *testing.T) {
	r := Analyze(make([]float64, 1000), rate)
	if r.Peak != 0 || r.RMS != 0 || r.Centroid != 0 {
		t.Errorf("Expected empty report, got %+v", r)
	}
	if r.PeakDB() != -120 {
		t.Errorf("Expected floor, got %f", r.PeakDB())
	}
	if got := Analyze(nil, rate); got.Samples != 0 {
		t.Errorf("Expected zero samples, got %d", got.Samples)
	}
}

func TestCentroidOrdersTones(t *testing.T) {
	low := Analyze(sine(200, 0.3, rate), rate)
	high := Analyze(sine(3000, 0.3, rate), rate)
	if low.Centroid >= high.Centroid {
		t.Errorf("Expected 200 Hz centroid below 3000 Hz, got %f >= %f", low.Centroid, high.Centroid)
	}
	if low.Bass < 0.5 || high.High < 0.5 {
		t.Errorf("Expected band split, got low %+v high %+v", low, high)
	}
}

func TestDB(t *testing.T) {
	if math.Abs(DB(1)) > 1e-12 {
		t.Errorf("Expected 0 dB, got %f", DB(1))
	}
	if math.Abs(DB(0.5)+6.0206) > 1e-3 {
		t.Errorf("Expected -6.02 dB, got %f", DB(0.5))
	}
}

func renderGenerator(t *testing.T, name string, seconds int) []float64 {
	t.Helper()
	factory, ok := generator.Lookup(name)
	if !ok {
		t.Fatalf("unknown generator %s", name)
	}
	ctx := graph.NewContext(rate)
	ctx.Resume()
	in := generator.NewInstance(ctx, schedule.NewManual(time.Unix(0, 0)), rand.New(rand.NewPCG(9, 9)))
	factory(in, ctx.Destination())
	defer in.Dispose()
	return ctx.Render(rate * seconds)
}

func TestBedSpectralShape(t *testing.T) {
	river := Analyze(renderGenerator(t, "river", 2), rate)
	air := Analyze(renderGenerator(t, "air", 2), rate)
	drone := Analyze(renderGenerator(t, "drone", 2), rate)

	if river.Centroid >= air.Centroid {
		t.Errorf("Expected lowpassed river below bandpassed air, got %f >= %f", river.Centroid, air.Centroid)
	}
	if drone.Bass < drone.High {
		t.Errorf("Expected drone weighted to bass, got %+v", drone)
	}
	if river.Peak > 1 || air.Peak > 1 {
		t.Errorf("Expected beds within full scale, got %f %f", river.Peak, air.Peak)
	}
	t.Logf("river %s", river)
	t.Logf("air   %s", air)
	t.Logf("drone %s", drone)
}
