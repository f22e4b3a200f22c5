package core

import (
	"github.com/akovalev/berth/internal/plugin"
	"github.com/akovalev/berth/plugins/container"
	"github.com/akovalev/berth/plugins/function"
	"github.com/akovalev/berth/plugins/generic"
	"github.com/akovalev/berth/plugins/nativepkg"
)

// builtinFactories are registered before any external plugin, in this
// fixed order. The order matters: action resolution scans plugins in
// registration order, so a later plugin only wins a capability through a
// module type the built-ins do not claim or through environment scoping.
var builtinFactories = []plugin.Factory{
	generic.Factory,
	container.Factory,
	function.Factory,
	nativepkg.Factory,
}
