package bench

import (
	"fmt"
	"strings"
	"time"

	"github.com/vk/pzsh/internal/clock"
)

// Profile attributes one startup's elapsed time to its stages.
type Profile struct {
	Stages []clock.Stage
	Total  time.Duration
}

func (p Profile) String() string {
	var b strings.Builder
	for _, s := range p.Stages {
		fmt.Fprintf(&b, "%-16s %s\n", s.Name, s.Elapsed)
	}
	fmt.Fprintf(&b, "%-16s %s\n", "total", p.Total)
	return b.String()
}

// StageFunc is one named stage of the startup path.
type StageFunc struct {
	Name string
	Run  func() error
}

// ProfileRun executes the stages once, in order, timing each. The first
// failing stage aborts the profile.
func ProfileRun(clk clock.Clock, stages []StageFunc) (Profile, error) {
	if clk == nil {
		clk = clock.System()
	}
	st := clock.NewStageTimer(clk)
	for _, stage := range stages {
		if err := stage.Run(); err != nil {
			return Profile{}, fmt.Errorf("stage %s: %w", stage.Name, err)
		}
		st.Mark(stage.Name)
	}
	return Profile{Stages: st.Stages(), Total: st.Total()}, nil
}
