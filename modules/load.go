package modules

import (
	"github.com/fatimahitawala/Transition-Services-sub002/modules/transition"
	"github.com/fatimahitawala/Transition-Services-sub002/pkg/application"
)

var BuiltInModules = []application.Module{
	transition.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
