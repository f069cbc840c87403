package resource

import (
	"maps"
	"slices"

	"github.com/nemanja-m/taskenv/pkg/core"
)

// NoExternalResources reports no resources for any name.
var NoExternalResources core.ExternalResourceInfoProvider = noExternalResources{}

type noExternalResources struct{}

func (noExternalResources) ExternalResourceInfos(string) []core.ExternalResourceInfo {
	return nil
}

// Info is an external resource described by string properties.
type Info map[string]string

func (i Info) Property(key string) (string, bool) {
	v, ok := i[key]
	return v, ok
}

func (i Info) Keys() []string {
	return slices.Sorted(maps.Keys(i))
}

// StaticProvider serves a fixed set of resources keyed by resource name.
type StaticProvider struct {
	resources map[string][]core.ExternalResourceInfo
}

func NewStaticProvider(resources map[string][]core.ExternalResourceInfo) *StaticProvider {
	copied := make(map[string][]core.ExternalResourceInfo, len(resources))
	for name, infos := range resources {
		copied[name] = slices.Clone(infos)
	}
	return &StaticProvider{resources: copied}
}

func (p *StaticProvider) ExternalResourceInfos(resourceName string) []core.ExternalResourceInfo {
	return slices.Clone(p.resources[resourceName])
}
