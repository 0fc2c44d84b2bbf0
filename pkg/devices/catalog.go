package devices

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rdm-protocol/rdm-go/pkg/model"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/responder"
)

// ModelNames maps configuration names to model IDs.
var ModelNames = map[string]uint16{
	"moving-light": MovingLightID,
	"dimmer":       DimmerID,
}

// LookupModel resolves a model name, or a numeric ID such as "0x0101".
// "none" and the empty string resolve to 0, meaning no active model.
func LookupModel(name string) (uint16, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "none" {
		return 0, nil
	}
	if id, ok := ModelNames[name]; ok {
		return id, nil
	}
	if n, err := strconv.ParseUint(name, 0, 16); err == nil {
		for _, id := range ModelNames {
			if id == uint16(n) {
				return id, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q (known: %s)", model.ErrUnknownModel, name, strings.Join(Names(), ", "))
}

// Names returns the known model names in sorted order.
func Names() []string {
	names := make([]string, 0, len(ModelNames))
	for n := range ModelNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RegisterAll registers every example model with reg.
func RegisterAll(reg *model.Registry) error {
	for _, m := range []model.Model{NewMovingLight(), NewDimmer()} {
		if err := reg.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// NewBusResponder builds a standalone responder with every example model
// registered and modelID active. It is used for simulated remote
// responders on the bus.
func NewBusResponder(uid rdm.UID, modelID uint16) (*model.Registry, error) {
	reg := model.NewRegistry(responder.New(uid))
	if err := RegisterAll(reg); err != nil {
		return nil, err
	}
	if modelID != 0 {
		if err := reg.Activate(modelID); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
