package mda

import (
	"log"
)

type TrainInfo struct {
	InputDim  int
	OutputDim int
	NumFolds  int
	Mode      Mode

	// Chunks and Documents are only set once training finished.
	Chunks    int
	Documents int
}

// Reducing reports whether the layer maps onto fewer dimensions than it reads.
func (i TrainInfo) Reducing() bool {
	return i.InputDim != i.OutputDim
}

// Observer receives training progress. All calls happen on the goroutine
// running Train.
type Observer interface {
	Warn(msg string)
	TrainingStarted(info TrainInfo)
	ChunkProcessed(chunks, docs int)
	FoldSolved(done, total int)
	TrainingFinished(info TrainInfo)
}

type NopObserver struct{}

func (NopObserver) Warn(string) {}
func (NopObserver) TrainingStarted(TrainInfo) {}
func (NopObserver) ChunkProcessed(int, int) {}
func (NopObserver) FoldSolved(int, int) {}
func (NopObserver) TrainingFinished(TrainInfo) {}

// LogObserver writes progress to a log.Logger.
type LogObserver struct {
	logger *log.Logger
	// FoldEvery is the fold interval between progress lines. Defaults to 10.
	FoldEvery int
}

func NewLogObserver(logger *log.Logger) *LogObserver {
	return &LogObserver{logger: logger, FoldEvery: 10}
}

func (o *LogObserver) Warn(msg string) {
	o.logger.Printf("WARN %s", msg)
}

func (o *LogObserver) TrainingStarted(info TrainInfo) {
	if info.Reducing() {
		o.logger.Printf("mDA reduction layer with %d input and %d output dimensions is beginning training..", info.InputDim, info.OutputDim)
		o.logger.Printf("Training the initial dimensional reduction with %d folds", info.NumFolds)
	} else {
		o.logger.Printf("Training mDA layer with %d dimensions.", info.InputDim)
	}
	o.logger.Printf("Building all scatter and P matrices (full corpus iteration).")
}

func (o *LogObserver) ChunkProcessed(chunks, docs int) {
	o.logger.Printf("Processed %d chunks (%d documents)", chunks, docs)
}

func (o *LogObserver) FoldSolved(done, total int) {
	every := o.FoldEvery
	if every <= 0 {
		every = 10
	}
	if done%every == 0 || done == total {
		o.logger.Printf("layer trained up to fold %d/%d..", done, total)
	}
}

func (o *LogObserver) TrainingFinished(info TrainInfo) {
	if info.Reducing() {
		o.logger.Printf("mDA reduction layer completed training (%d documents).", info.Documents)
	} else {
		o.logger.Printf("mDA layer completed training (%d documents).", info.Documents)
	}
}
