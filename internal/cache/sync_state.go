package cache

import (
	"context"
	"fmt"
	"time"
)

const syncSnapshotTTL = 7 * 24 * time.Hour

// ChannelStockSnapshot 渠道上次推送的库存快照
// 键为渠道 SKU，值为上次成功推送的数量
type ChannelStockSnapshot struct {
	ChannelID  uint           `json:"channel_id"`
	Quantities map[string]int `json:"quantities"`
	PushedAt   int64          `json:"pushed_at"`
}

func channelStockSnapshotKey(channelID uint) string {
	return fmt.Sprintf("sync:stock:%d", channelID)
}

// GetChannelStockSnapshot 读取渠道库存推送快照，缓存未启用或缺失时返回 nil
func GetChannelStockSnapshot(ctx context.Context, channelID uint) (*ChannelStockSnapshot, error) {
	var snapshot ChannelStockSnapshot
	found, err := GetJSON(ctx, channelStockSnapshotKey(channelID), &snapshot)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &snapshot, nil
}

// SaveChannelStockSnapshot 保存渠道库存推送快照
func SaveChannelStockSnapshot(ctx context.Context, snapshot *ChannelStockSnapshot) error {
	if snapshot == nil {
		return nil
	}
	if snapshot.PushedAt == 0 {
		snapshot.PushedAt = time.Now().Unix()
	}
	return SetJSON(ctx, channelStockSnapshotKey(snapshot.ChannelID), snapshot, syncSnapshotTTL)
}

// DropChannelStockSnapshot 清除渠道库存推送快照（映射变更后强制全量推送）
func DropChannelStockSnapshot(ctx context.Context, channelID uint) error {
	return Del(ctx, channelStockSnapshotKey(channelID))
}
