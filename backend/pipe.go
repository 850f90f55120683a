package backend

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
)

// Tool identifies a command-line player
type Tool int

const (
	ToolPulse Tool = iota
	ToolPipeWire
	ToolALSA
	ToolSoX
	ToolFFplay
	ToolOSS
)

// Command describes how to launch a command-line player reading raw s16le stereo from stdin
type Command struct {
	Tool Tool
	Name string
	Path string
	Args []string
}

// lookPath is swapped in tests
var lookPath = exec.LookPath

// Detect searches for a command-line player
// Priority: pacat > pw-cat > aplay > play (sox) > ffplay > OSS
func Detect(rate int, latency time.Duration) (*Command, error) {
	r := strconv.Itoa(rate)
	ms := strconv.Itoa(int(latency / time.Millisecond))

	candidates := []struct {
		tool Tool
		name string
		bin  string
		args []string
	}{
		{ToolPulse, "pacat", "pacat", []string{
			"--raw", "--format=s16le", "--rate=" + r, "--channels=2", "--latency-msec=" + ms, "--playback",
		}},
		{ToolPipeWire, "pw-cat", "pw-cat", []string{
			"--playback", "--format=s16", "--rate=" + r, "--channels=2", "--latency=" + ms + "ms", "-",
		}},
		{ToolALSA, "aplay", "aplay", []string{
			"-t", "raw", "-f", "S16_LE", "-r", r, "-c", "2", "-q",
		}},
		{ToolSoX, "sox", "play", []string{
			"-t", "raw", "-e", "signed", "-b", "16", "-c", "2", "-r", r, "-", "-d", "-q",
		}},
		{ToolFFplay, "ffplay", "ffplay", []string{
			"-nodisp", "-autoexit", "-f", "s16le", "-ac", "2", "-ar", r,
			"-probesize", "32", "-analyzeduration", "0", "-i", "pipe:0", "-loglevel", "quiet",
		}},
	}

	for _, c := range candidates {
		if path, err := lookPath(c.bin); err == nil {
			return &Command{Tool: c.tool, Name: c.name, Path: path, Args: c.args}, nil
		}
	}

	// FreeBSD OSS takes raw frames on the device node
	if runtime.GOOS == "freebsd" {
		if _, err := os.Stat("/dev/dsp"); err == nil {
			return &Command{Tool: ToolOSS, Name: "oss", Path: "/dev/dsp"}, nil
		}
	}

	return nil, ErrNoAudioBackend
}

// pipeBackend writes int16 frames to a player's stdin (or the OSS device) on a fixed tick
type pipeBackend struct {
	opts Options
	cmd  *Command

	proc  *exec.Cmd
	out   io.WriteCloser
	dead  atomic.Bool
	once  sync.Once
	stop  chan struct{}
	wg    sync.WaitGroup
	errCh chan error
}

func openPipe(opts Options) (Backend, error) {
	c, err := Detect(opts.SampleRate, opts.Buffer)
	if err != nil {
		return nil, err
	}

	b := &pipeBackend{opts: opts, cmd: c, stop: make(chan struct{}), errCh: make(chan error, 1)}

	if c.Tool == ToolOSS {
		f, err := os.OpenFile(c.Path, os.O_WRONLY, 0)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", c.Path, err)
		}
		b.out = f
		return b, nil
	}

	proc := exec.Command(c.Path, c.Args...)
	stdin, err := proc.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%s stdin: %w", c.Name, err)
	}
	if err := proc.Start(); err != nil {
		stdin.Close()
		return nil, fmt.Errorf("start %s: %w", c.Name, err)
	}
	b.proc = proc
	b.out = stdin

	b.wg.Add(1)
	go b.monitorProcess()
	return b, nil
}

func (b *pipeBackend) Name() string {
	return NamePipe + ":" + b.cmd.Name
}

// Errors reports a write failure on the pipe
func (b *pipeBackend) Errors() <-chan error {
	return b.errCh
}

func (b *pipeBackend) Attach(s beep.Streamer) error {
	if b.dead.Load() {
		return ErrPipeClosed
	}
	b.wg.Add(1)
	go b.loop(newStreamReader(s, formatInt16, b.opts.Trim))
	return nil
}

// loop writes one buffer of frames per tick until stopped or the pipe breaks
func (b *pipeBackend) loop(r io.Reader) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.opts.Buffer)
	defer ticker.Stop()

	frames := beep.SampleRate(b.opts.SampleRate).N(b.opts.Buffer)
	chunk := make([]byte, frames*formatInt16.frameBytes())

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			n, err := io.ReadFull(r, chunk)
			if err != nil {
				clear(chunk[n:])
			}
			if _, werr := b.out.Write(chunk); werr != nil {
				b.dead.Store(true)
				select {
				case b.errCh <- fmt.Errorf("%w: %v", ErrPipeClosed, werr):
				default:
				}
				b.opts.Logger.Warn("audio pipe closed", "player", b.cmd.Name, "error", werr)
				return
			}
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return
			}
		}
	}
}

// monitorProcess watches for player exit
func (b *pipeBackend) monitorProcess() {
	defer b.wg.Done()
	if err := b.proc.Wait(); err != nil && !b.dead.Load() {
		b.opts.Logger.Debug("audio player exited", "player", b.cmd.Name, "error", err)
	}
	b.dead.Store(true)
}

func (b *pipeBackend) Close() error {
	b.once.Do(func() {
		b.dead.Store(true)
		close(b.stop)
		b.out.Close()
		if b.proc != nil && b.proc.Process != nil {
			b.proc.Process.Kill()
		}
	})
	b.wg.Wait()
	return nil
}
