package db

import (
	"fmt"
	"sync"
	"time"
)

// IDGenerator 主键生成器，用户和消息的ID都由它分配
type IDGenerator interface {
	NextID() (uint64, error)
}

// Snowflake 雪花ID生成器
// 64位ID结构：
// 1位符号位(0) + 41位时间戳 + 10位机器ID + 12位序列号
type Snowflake struct {
	mu        sync.Mutex
	lastMilli int64 // 上次生成ID的时间戳（毫秒）
	machineID int64 // 机器ID (0-1023)
	sequence  int64 // 序列号 (0-4095)
	now       func() time.Time
}

const (
	machineIDBits = 10
	sequenceBits  = 12

	maxMachineID = -1 ^ (-1 << machineIDBits) // 1023
	maxSequence  = -1 ^ (-1 << sequenceBits)  // 4095

	machineIDShift = sequenceBits                 // 12
	timestampShift = sequenceBits + machineIDBits // 22
)

// epoch 起始时间：2025-01-01 00:00:00 UTC
var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

// NewSnowflake 创建雪花ID生成器
// machineID: 机器ID (0-1023)，用于区分不同的服务实例
func NewSnowflake(machineID int64) (*Snowflake, error) {
	if machineID < 0 || machineID > maxMachineID {
		return nil, fmt.Errorf("machineID必须在0-%d之间，当前值：%d", maxMachineID, machineID)
	}
	return &Snowflake{machineID: machineID, now: time.Now}, nil
}

// NextID 生成下一个ID
func (s *Snowflake) NextID() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UnixMilli()

	// 时钟回拨检测
	if now < s.lastMilli {
		return 0, fmt.Errorf("时钟回拨检测：当前时间 %d < 上次时间 %d", now, s.lastMilli)
	}

	if now == s.lastMilli {
		s.sequence = (s.sequence + 1) & maxSequence
		if s.sequence == 0 {
			// 序列号溢出，等待下一毫秒
			for now <= s.lastMilli {
				time.Sleep(100 * time.Microsecond)
				now = s.now().UnixMilli()
			}
		}
	} else {
		s.sequence = 0
	}
	s.lastMilli = now

	diff := now - epoch
	if diff < 0 {
		return 0, fmt.Errorf("当前时间早于起始时间")
	}

	id := (diff << timestampShift) | (s.machineID << machineIDShift) | s.sequence
	return uint64(id), nil
}

// ParseSnowflakeID 解析雪花ID，返回生成时间、机器ID、序列号
func ParseSnowflakeID(id uint64) (createdAt time.Time, machineID int64, sequence int64) {
	v := int64(id)
	sequence = v & maxSequence
	machineID = (v >> machineIDShift) & maxMachineID
	createdAt = time.UnixMilli((v >> timestampShift) + epoch)
	return
}
