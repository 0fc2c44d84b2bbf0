package main

import (
	"sync"

	"github.com/rdm-protocol/rdm-go/pkg/devices"
	"github.com/rdm-protocol/rdm-go/pkg/discovery"
	"github.com/rdm-protocol/rdm-go/pkg/log"
)

// modelWatcher republishes the TXT records when the local model changes.
// It sees every protocol event, so Log must stay cheap.
type modelWatcher struct {
	mu   sync.Mutex
	adv  discovery.Advertiser
	info discovery.HostInfo
	uid  string
}

func (w *modelWatcher) attach(adv discovery.Advertiser, info *discovery.HostInfo) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.adv = adv
	w.info = *info
	w.uid = info.UID.String()
}

// Log implements log.Logger.
func (w *modelWatcher) Log(ev log.Event) {
	if ev.StateChange == nil || ev.StateChange.Entity != log.StateEntityModel {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.adv == nil || ev.Source != w.uid {
		return
	}
	name := ev.StateChange.NewState
	if name == w.info.ModelName {
		return
	}
	w.info.ModelName = name
	w.info.ModelID = 0
	if id, ok := modelID(name); ok {
		w.info.ModelID = id
	}
	info := w.info
	_ = w.adv.Update(&info)
}

func modelID(name string) (uint16, bool) {
	if name == "" {
		return 0, false
	}
	id, ok := devices.ModelNames[name]
	return id, ok
}

var _ log.Logger = (*modelWatcher)(nil)
