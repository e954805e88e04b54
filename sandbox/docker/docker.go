// Package docker provides a container-isolated sandbox.Executor. Every
// execution runs the candidate program in a fresh Python container with CPU,
// memory and wall-clock limits; the container is force-removed afterwards.
package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/moby/moby/api/pkg/stdcopy"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"

	"github.com/solvegrid/solvegrid/core"
	"github.com/solvegrid/solvegrid/sandbox"
)

// Options configure the docker executor.
type Options struct {
	// Image is the container image holding a python3 interpreter.
	Image string
	// CPULimit caps CPU usage in whole-core units (0.5 = half a core).
	CPULimit float64
	// MemoryLimit caps memory in bytes.
	MemoryLimit int64
	// NetworkDisabled cuts the container off from the network. Candidate
	// programs have no business talking to anyone.
	NetworkDisabled bool
}

// Executor implements sandbox.Executor on top of the Docker Engine API.
type Executor struct {
	cli  *client.Client
	opts Options
}

// New creates a docker executor using environment-configured client settings.
func New(optFns ...func(o *Options)) (*Executor, error) {
	opts := Options{
		Image:           "python:3.12-slim",
		CPULimit:        1,
		MemoryLimit:     256 << 20,
		NetworkDisabled: true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}

	return &Executor{cli: cli, opts: opts}, nil
}

// Close releases the underlying docker client.
func (e *Executor) Close() error { return e.cli.Close() }

// driver is appended to the candidate code. The candidate must define
// transform(grid); the driver feeds it the input literal and prints the
// resulting grid one row per line.
const driver = `
if __name__ == "__main__":
    _out = transform(%s)
    for _row in _out:
        print(" ".join(str(_c) for _c in _row))
`

func pythonLiteral(g core.Grid) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, row := range g {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('[')
		for j, v := range row {
			if j > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%d", v)
		}
		sb.WriteByte(']')
	}
	sb.WriteByte(']')
	return sb.String()
}

// Execute implements sandbox.Executor. Failures never surface as errors;
// they are encoded in the returned RunResult.
func (e *Executor) Execute(ctx context.Context, code string, input core.Grid, timeout time.Duration) core.RunResult {
	script := code + fmt.Sprintf(driver, pythonLiteral(input))

	containerCfg := &container.Config{
		Image:           e.opts.Image,
		Cmd:             []string{"python3", "-c", script},
		Labels:          map[string]string{"solvegrid": "true"},
		NetworkDisabled: e.opts.NetworkDisabled,
	}

	initTrue := true
	hostCfg := &container.HostConfig{
		Init: &initTrue,
	}
	if e.opts.CPULimit > 0 {
		hostCfg.NanoCPUs = int64(e.opts.CPULimit * 1e9)
	}
	if e.opts.MemoryLimit > 0 {
		hostCfg.Memory = e.opts.MemoryLimit
	}

	createResp, err := e.cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     containerCfg,
		HostConfig: hostCfg,
	})
	if err != nil {
		return core.RunResult{ErrorKind: core.ErrorKindExecution, Detail: fmt.Sprintf("creating container: %v", err)}
	}
	containerID := createResp.ID
	defer func() {
		e.cli.ContainerRemove(context.Background(), containerID, client.ContainerRemoveOptions{Force: true})
	}()

	if _, err := e.cli.ContainerStart(ctx, containerID, client.ContainerStartOptions{}); err != nil {
		return core.RunResult{ErrorKind: core.ErrorKindExecution, Detail: fmt.Sprintf("starting container: %v", err)}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	waitResult := e.cli.ContainerWait(timeoutCtx, containerID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	for {
		select {
		case err := <-waitResult.Error:
			if err != nil {
				e.cli.ContainerKill(context.Background(), containerID, client.ContainerKillOptions{Signal: "SIGKILL"})
				return core.RunResult{ErrorKind: core.ErrorKindExecution, Detail: "execution timed out"}
			}
			// nil error means no error on this channel; wait for result
		case status := <-waitResult.Result:
			stdout, stderr := e.collectLogs(containerID)
			if status.StatusCode != 0 {
				detail := strings.TrimSpace(stderr)
				if detail == "" {
					detail = fmt.Sprintf("exit code %d", status.StatusCode)
				}
				return core.RunResult{Raw: stdout, ErrorKind: core.ErrorKindExecution, Detail: detail}
			}
			out, ok := sandbox.ParseGrid(stdout)
			if !ok {
				return core.RunResult{Raw: stdout, ErrorKind: core.ErrorKindExecution, Detail: "output is not a grid"}
			}
			return core.RunResult{Output: out, Raw: stdout}
		}
	}
}

func (e *Executor) collectLogs(containerID string) (string, string) {
	logReader, err := e.cli.ContainerLogs(context.Background(), containerID, client.ContainerLogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil || logReader == nil {
		return "", ""
	}
	defer logReader.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, logReader); err != nil {
		// Fall back to the raw stream when demultiplexing fails (tty mode).
		raw, _ := io.ReadAll(logReader)
		return stdout.String() + string(raw), stderr.String()
	}
	return stdout.String(), stderr.String()
}
