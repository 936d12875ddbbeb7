package workers

// Workers aggregates background workers and starts them together.
type Workers struct {
	workers []Worker
}

// NewWorkers bundles the given workers. Run starts them in argument order.
func NewWorkers(ws ...Worker) *Workers {
	return &Workers{workers: ws}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
