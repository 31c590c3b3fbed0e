package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"gopkg.in/yaml.v3"
)

// EtcdOptions etcd 配置选项
type EtcdOptions struct {
	Endpoints   []string      // etcd 服务器地址列表
	Username    string        // 用户名（可选）
	Password    string        // 密码（可选）
	Prefix      string        // 键前缀（可选）
	Timeout     time.Duration // 连接超时时间（默认 5 秒）
	DialTimeout time.Duration // 拨号超时时间（默认 5 秒）
}

// AddEtcd 添加 etcd 配置源
func (b *ConfigurationBuilder) AddEtcd(opts EtcdOptions) *ConfigurationBuilder {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return b.Add(&EtcdSource{Options: opts})
}

// EtcdSource etcd 配置源
// 实现了 WatchableSource，键变更时触发配置重载
type EtcdSource struct {
	Options EtcdOptions

	client *clientv3.Client
	cancel context.CancelFunc
}

func (s *EtcdSource) Name() string {
	return fmt.Sprintf("Etcd(%v)", s.Options.Endpoints)
}

func (s *EtcdSource) Load() (map[string]any, error) {
	cli, err := s.ensureClient()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.Options.Timeout)
	defer cancel()

	// 获取指定前缀下的所有配置
	prefix := s.Options.Prefix
	if prefix == "" {
		prefix = "/"
	}

	resp, err := cli.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to get config from etcd: %w", err)
	}

	result := make(map[string]any)
	for _, kv := range resp.Kvs {
		s.applyKeyValue(result, string(kv.Key), string(kv.Value))
	}

	return result, nil
}

// StartWatch 监听前缀下的键变更，任一变更触发 onChange
func (s *EtcdSource) StartWatch(onChange func()) error {
	cli, err := s.ensureClient()
	if err != nil {
		return err
	}

	prefix := s.Options.Prefix
	if prefix == "" {
		prefix = "/"
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	watchCh := cli.Watch(ctx, prefix, clientv3.WithPrefix())
	go func() {
		for resp := range watchCh {
			if resp.Canceled {
				return
			}
			if len(resp.Events) > 0 {
				onChange()
			}
		}
	}()

	return nil
}

// StopWatch 停止监听并关闭客户端
func (s *EtcdSource) StopWatch() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
}

func (s *EtcdSource) ensureClient() (*clientv3.Client, error) {
	if s.client != nil {
		return s.client, nil
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   s.Options.Endpoints,
		Username:    s.Options.Username,
		Password:    s.Options.Password,
		DialTimeout: s.Options.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}
	s.client = cli
	return cli, nil
}

// applyKeyValue 将一个 etcd 键值写入结果 map
// 值优先按 JSON 解析，其次 YAML，否则按字符串处理
func (s *EtcdSource) applyKeyValue(result map[string]any, key, value string) {
	if s.Options.Prefix != "" {
		key = strings.TrimPrefix(key, s.Options.Prefix)
	}
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return
	}

	// 将路径分隔符 / 转换为 :
	key = strings.ReplaceAll(key, "/", ":")

	var jsonValue any
	if err := json.Unmarshal([]byte(value), &jsonValue); err == nil {
		setNestedValue(result, key, jsonValue)
		return
	}

	var yamlValue any
	if err := yaml.Unmarshal([]byte(value), &yamlValue); err == nil {
		setNestedValue(result, key, yamlValue)
		return
	}

	setNestedValue(result, key, value)
}
