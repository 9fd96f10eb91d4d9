package workers

import (
	"log"
	"time"

	"github.com/fairhaven-home/fairhaven-api/config"
	"github.com/fairhaven-home/fairhaven-api/services"
)

// Sweeper periodically cancels jobs with no activity past the staleness
// window.
type Sweeper struct {
	interval   time.Duration
	staleAfter time.Duration
	stop       chan struct{}
	done       chan struct{}
}

// NewSweeper builds a sweeper from the loaded configuration.
func NewSweeper(cfg *config.Config) *Sweeper {
	return &Sweeper{
		interval:   time.Duration(cfg.SweepIntervalMinutes) * time.Minute,
		staleAfter: time.Duration(cfg.JobStaleAfterHours) * time.Hour,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the sweep loop in a goroutine until Stop is called.
func (s *Sweeper) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop signals the loop to exit and waits for it to finish.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sweeper) sweep() {
	count, err := services.CancelStaleJobs(s.staleAfter)
	if err != nil {
		log.Printf("stale job sweep failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("stale job sweep cancelled %d job(s)", count)
	}
}
