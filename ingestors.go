package main

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hajersmiai/trainwarehouse/ingestor"
)

var (
	liveboardTicker *time.Ticker
	feedTicker      *time.Ticker
	ingestorStop    chan struct{}

	liveboardRunning int32
	feedRunning      int32
)

// SetUpIngestors starts the periodic ingestion timers: a fast one for
// liveboards and compositions, and a slow one for the disturbance and
// connection feeds. A tick is skipped if the previous run of the same kind
// has not finished yet.
func SetUpIngestors(in *ingestor.Ingestor) {
	liveboardTicker = time.NewTicker(LiveboardInterval)
	feedTicker = time.NewTicker(FeedInterval)
	ingestorStop = make(chan struct{})

	go func() {
		for {
			select {
			case <-liveboardTicker.C:
				go runPass(&liveboardRunning, in.RunLiveboards)
			case <-feedTicker.C:
				go runPass(&feedRunning, in.RunFeeds)
			case <-ingestorStop:
				return
			}
		}
	}()
	mainLog.Println("Ingestors set up")
}

// TearDownIngestors stops the periodic ingestion timers
func TearDownIngestors() {
	liveboardTicker.Stop()
	feedTicker.Stop()
	close(ingestorStop)
	mainLog.Println("Ingestors torn down")
}

func runPass(running *int32, pass func(context.Context) (*ingestor.Summary, error)) {
	if !atomic.CompareAndSwapInt32(running, 0, 1) {
		mainLog.Println("Previous ingestion still in progress, skipping tick")
		return
	}
	defer atomic.StoreInt32(running, 0)

	summary, err := pass(context.Background())
	if err != nil {
		mainLog.Println("Ingestion failed:", err)
		return
	}
	mainLog.Println(summary)
}
