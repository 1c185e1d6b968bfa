package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"
)

// Event is a message consumed by Scene.HandleEvent.
type Event interface {
	fmt.Stringer
	sceneEvent()
}

// LoadedEvent reports a completed asset load.
type LoadedEvent struct {
	URL   string
	Asset *model.SceneAsset
}

// LoadFailedEvent reports a failed asset load.
type LoadFailedEvent struct {
	URL string
	Err error
}

func (LoadedEvent) sceneEvent()     {}
func (LoadFailedEvent) sceneEvent() {}

func (e LoadedEvent) String() string {
	return fmt.Sprintf("loaded(%s)", e.URL)
}

func (e LoadFailedEvent) String() string {
	return fmt.Sprintf("load-failed(%s): %v", e.URL, e.Err)
}
