// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "configs/inventory.yaml"

// Config 是所有服务共享的配置结构：App 描述业务开关，Infra 描述外部依赖。
type Config struct {
	App   AppConfig   `yaml:"app"`
	Infra InfraConfig `yaml:"infra"`
}

type AppConfig struct {
	LogLevel     string             `yaml:"log_level" envconfig:"LOG_LEVEL"`
	Inventory    InventoryConfig    `yaml:"inventory"`
	Notification NotificationConfig `yaml:"notification"`
}

// InventoryConfig 决定库存账本使用的存储、锁与购票规则。
type InventoryConfig struct {
	Store         string `yaml:"store" envconfig:"INVENTORY_STORE"` // mysql | redis | memory
	Lock          string `yaml:"lock" envconfig:"INVENTORY_LOCK"`   // none | local | zookeeper
	PurchaseRule  string `yaml:"purchase_rule" envconfig:"INVENTORY_PURCHASE_RULE"`
	PublishEvents bool   `yaml:"publish_events" envconfig:"INVENTORY_PUBLISH_EVENTS"`
	CASRetries    int    `yaml:"cas_retries" envconfig:"INVENTORY_CAS_RETRIES"`
}

// NotificationConfig 描述确认邮件的发件人与活动信息。
type NotificationConfig struct {
	Sender        string `yaml:"sender" envconfig:"NOTIFICATION_SENDER"`
	EventName     string `yaml:"event_name" envconfig:"NOTIFICATION_EVENT_NAME"`
	EventDate     string `yaml:"event_date" envconfig:"NOTIFICATION_EVENT_DATE"`
	EventLocation string `yaml:"event_location" envconfig:"NOTIFICATION_EVENT_LOCATION"`
	SupportEmail  string `yaml:"support_email" envconfig:"NOTIFICATION_SUPPORT_EMAIL"`
}

type InfraConfig struct {
	Jaeger    JaegerConfig    `yaml:"jaeger"`
	MySQL     MySQLConfig     `yaml:"mysql"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Zookeeper ZookeeperConfig `yaml:"zookeeper"`
	Nacos     NacosConfig     `yaml:"nacos"`
}

type JaegerConfig struct {
	Endpoint    string  `yaml:"endpoint" envconfig:"JAEGER_ENDPOINT"`
	SampleRatio float64 `yaml:"sample_ratio" envconfig:"JAEGER_SAMPLE_RATIO"`
}

type MySQLConfig struct {
	DSN          string `yaml:"dsn" envconfig:"MYSQL_DSN"`
	MaxOpenConns int    `yaml:"max_open_conns" envconfig:"MYSQL_MAX_OPEN_CONNS"`
	AutoMigrate  bool   `yaml:"auto_migrate" envconfig:"MYSQL_AUTO_MIGRATE"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

type KafkaConfig struct {
	Brokers           []string `yaml:"brokers" envconfig:"KAFKA_BROKERS"`
	TicketEventsTopic string   `yaml:"ticket_events_topic" envconfig:"KAFKA_TICKET_EVENTS_TOPIC"`
	DeadLetterTopic   string   `yaml:"dead_letter_topic" envconfig:"KAFKA_DEAD_LETTER_TOPIC"`
	ConsumerGroupID   string   `yaml:"consumer_group_id" envconfig:"KAFKA_CONSUMER_GROUP_ID"`
}

type ZookeeperConfig struct {
	Servers        []string `yaml:"servers" envconfig:"ZOOKEEPER_SERVERS"`
	SessionTimeout int      `yaml:"session_timeout_seconds" envconfig:"ZOOKEEPER_SESSION_TIMEOUT"`
}

type NacosConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"NACOS_ENABLED"`
	ServerAddrs string `yaml:"server_addrs" envconfig:"NACOS_SERVER_ADDRS"`
	Namespace   string `yaml:"namespace" envconfig:"NACOS_NAMESPACE"`
	Group       string `yaml:"group" envconfig:"NACOS_GROUP"`
}

// DefaultConfig 返回本地开发可直接运行的配置。
func DefaultConfig() Config {
	return Config{
		App: AppConfig{
			LogLevel: "info",
			Inventory: InventoryConfig{
				Store:         "memory",
				Lock:          "local",
				PurchaseRule:  "quantity >= 1 && quantity <= 10",
				PublishEvents: false,
				CASRetries:    16,
			},
			Notification: NotificationConfig{
				Sender:       "noreply@alldays.club",
				EventName:    "Alldays Event",
				SupportEmail: "support@alldays.club",
			},
		},
		Infra: InfraConfig{
			Jaeger: JaegerConfig{SampleRatio: 1},
			MySQL:  MySQLConfig{MaxOpenConns: 20, AutoMigrate: true},
			Redis:  RedisConfig{Addr: "localhost:6379"},
			Kafka: KafkaConfig{
				Brokers:           []string{"localhost:9092"},
				TicketEventsTopic: "ticket-events",
				DeadLetterTopic:   "ticket-events-dlt",
				ConsumerGroupID:   "notification-group",
			},
			Zookeeper: ZookeeperConfig{Servers: []string{"localhost:2181"}, SessionTimeout: 10},
			Nacos:     NacosConfig{ServerAddrs: "localhost:8848", Group: "DEFAULT_GROUP"},
		},
	}
}

var currentConfig atomic.Pointer[Config]

// GetCurrentConfig 返回最近一次 LoadConfig 的结果；尚未加载时返回默认配置。
func GetCurrentConfig() *Config {
	if c := currentConfig.Load(); c != nil {
		return c
	}
	c := DefaultConfig()
	return &c
}

// LoadConfig 按 默认值 -> YAML 文件 -> .env / 环境变量 的顺序叠加配置。
// path 为空时读取 CONFIG_FILE，再退回 configs/inventory.yaml；默认文件不存在不算错误。
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("CONFIG_FILE")
		explicit = path != ""
	}
	if path == "" {
		path = defaultConfigFile
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, errors.Wrapf(err, "read config file %s", path)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "apply environment overrides")
	}

	currentConfig.Store(&cfg)
	return &cfg, nil
}
