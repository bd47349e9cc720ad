package config

import (
	"time"

	"github.com/cuongbtq/jobboard/internal/alerts"
	"github.com/cuongbtq/jobboard/shared/logger"
	"github.com/cuongbtq/jobboard/shared/postgresql"
	"github.com/cuongbtq/jobboard/shared/rabbitmq"
	"github.com/cuongbtq/jobboard/shared/redis"
)

// LoggerConfig maps the logging section onto the shared logger
func (c *Config) LoggerConfig() *logger.Config {
	timeFormat := c.Logging.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}

	return &logger.Config{
		Level:        c.Logging.Level,
		Format:       c.Logging.Format,
		Output:       c.Logging.Output,
		EnableSource: c.Logging.EnableCaller,
		TimeFormat:   timeFormat,
	}
}

// PostgresConfig maps the database section onto the shared client
func (c *Config) PostgresConfig() *postgresql.Config {
	return &postgresql.Config{
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Database,
		SSLMode:         c.Database.SSLMode,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
	}
}

// TriggerQueueConfig is the RabbitMQ client config for pass trigger messages
func (c *Config) TriggerQueueConfig() *rabbitmq.Config {
	return c.rabbitConfig(c.RabbitMQ.Exchange, c.RabbitMQ.Queue, c.RabbitMQ.RoutingKey)
}

// NotificationQueueConfig is the RabbitMQ client config for outbound email messages
func (c *Config) NotificationQueueConfig() *rabbitmq.Config {
	return c.rabbitConfig(c.Notifications.Exchange, c.Notifications.Queue, c.Notifications.RoutingKey)
}

func (c *Config) rabbitConfig(exchange ExchangeConfig, queue QueueConfig, routingKey string) *rabbitmq.Config {
	r := c.RabbitMQ
	return &rabbitmq.Config{
		Host:               r.Host,
		Port:               r.Port,
		User:               r.User,
		Password:           r.Password,
		VHost:              r.VHost,
		ExchangeName:       exchange.Name,
		ExchangeType:       exchange.Type,
		ExchangeDurable:    exchange.Durable,
		ExchangeAutoDelete: exchange.AutoDelete,
		QueueName:          queue.Name,
		QueueDurable:       queue.Durable,
		QueueAutoDelete:    queue.AutoDelete,
		QueueExclusive:     queue.Exclusive,
		RoutingKey:         routingKey,
		RetryAttempts:      r.Connection.RetryAttempts,
		RetryInterval:      r.Connection.RetryInterval,
		Heartbeat:          r.Connection.Heartbeat,
		ConnectionTimeout:  r.Connection.ConnectionTimeout,
		PublishRetries:     r.Publish.RetryAttempts,
		PublishRetryDelay:  r.Publish.RetryInterval,
		PublishBackoffMult: r.Publish.BackoffMultiplier,
	}
}

// RedisClientConfig maps the redis section onto the shared client
func (c *Config) RedisClientConfig() *redis.Config {
	return &redis.Config{
		URL:         c.Redis.URL,
		DialTimeout: c.Redis.DialTimeout,
		PoolSize:    c.Redis.PoolSize,
	}
}

// SchedulerSettings fills the tunables of an alerts.Config. Collaborators
// are left for the caller to set.
func (c *Config) SchedulerSettings() alerts.Config {
	s := c.Scheduler
	return alerts.Config{
		LookaheadDays:   s.LookaheadDays,
		Lookback:        s.Lookback,
		MaxMatches:      s.MaxMatches,
		QueryTimeout:    s.QueryTimeout,
		DispatchTimeout: s.DispatchTimeout,
		Fanout:          s.Fanout,
		LockTTL:         s.LockTTL,
		BaseURL:         s.BaseURL,
		Templates: alerts.Templates{
			DeadlineReminder: s.Templates.DeadlineReminder,
			SavedSearchAlert: s.Templates.SavedSearchAlert,
		},
	}
}
