// Demonstrates wiring the five packages together: a worker pool, a
// scheduler on top of it, and a wait group joining a batch of
// independent jobs that each touch the scheduler's dispatch path.
//
// This is not a library entry point — callers import ring, arena,
// waitgroup, pool, and scheduler directly. It exists so the module has
// one place that exercises the whole stack end to end.
package main

import (
	"fmt"
	"log"

	"github.com/seakerOner/seakcutils/pool"
	"github.com/seakerOner/seakcutils/scheduler"
	"github.com/seakerOner/seakcutils/waitgroup"
)

func main() {
	p := pool.Init(0, pool.WithAutoGOMAXPROCS())
	s := scheduler.SpawnScheduler(p)

	const batches = 8
	wg := waitgroup.New(batches)

	for i := 0; i < batches; i++ {
		i := i
		a := s.Spawn(func(any) {
			log.Printf("batch %d: stage A", i)
		}, nil)
		b := s.Spawn(func(any) {
			log.Printf("batch %d: stage B", i)
		}, nil)
		c := s.Spawn(func(any) {
			log.Printf("batch %d: stage C", i)
			wg.Done()
		}, nil)
		s.Chain(a, b, c)
	}

	wg.Wait()
	fmt.Println("all batches complete")

	s.ShutdownScheduler()
}
