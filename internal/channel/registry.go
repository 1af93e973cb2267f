package channel

import (
	"sync"
	"time"

	"github.com/omniorder/internal/constants"
)

// Registry 渠道适配器注册表，按渠道类型分发
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// NewDefaultRegistry 创建挂载全部内置适配器的注册表
func NewDefaultRegistry(pushTimeout time.Duration) *Registry {
	pusher := NewHTTPPusher(pushTimeout)
	registry := NewRegistry()
	registry.Register(NewShopifyAdapter(pusher))
	registry.Register(NewAmazonAdapter(pusher))
	registry.Register(NewEbayAdapter(pusher))
	registry.Register(NewWooCommerceAdapter(pusher))
	registry.Register(NewGenericAdapter(constants.ChannelTypePOS, pusher))
	registry.Register(NewGenericAdapter(constants.ChannelTypeManual, pusher))
	return registry
}

// Register 注册适配器，同类型覆盖
func (r *Registry) Register(adapter Adapter) {
	if adapter == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Type()] = adapter
}

// Get 按渠道类型获取适配器
func (r *Registry) Get(channelType string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[channelType]
	if !ok {
		return nil, ErrUnknownChannelType
	}
	return adapter, nil
}
