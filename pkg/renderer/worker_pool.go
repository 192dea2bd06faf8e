package renderer

import (
	"runtime"
	"sync"

	"github.com/df07/go-progressive-pathtracer/pkg/framebuffer"
	"github.com/shirou/gopsutil/cpu"
)

// DefaultWorkerCount returns the number of logical CPUs, falling back to
// runtime.NumCPU when the host cannot be queried
func DefaultWorkerCount() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile     Tile
	Frame    uint64
	Renderer *TileRenderer
	Target   *framebuffer.Framebuffer // Shared buffer; tiles never overlap
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TileID int
	Stats  TileStats
}

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	numWorkers  int
	wg          sync.WaitGroup
}

// NewWorkerPool creates a worker pool sized for maxTiles outstanding tasks
func NewWorkerPool(numWorkers, maxTiles int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkerCount()
	}
	return &WorkerPool{
		taskQueue:   make(chan TileTask, maxTiles),
		resultQueue: make(chan TileResult, maxTiles),
		numWorkers:  numWorkers,
	}
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run()
	}
}

// Stop shuts down all workers after the queued tasks finish
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// SubmitTask submits a tile task to the worker pool
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed tile result
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

func (wp *WorkerPool) run() {
	defer wp.wg.Done()
	for task := range wp.taskQueue {
		stats := task.Renderer.RenderTile(task.Tile, task.Frame, task.Target)
		wp.resultQueue <- TileResult{TileID: task.Tile.ID, Stats: stats}
	}
}
