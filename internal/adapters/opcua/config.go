package opcua

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config captures the runtime details required to open an OPC UA session
// against the line HMI.
type Config struct {
	Endpoint         string        `yaml:"endpoint"`
	Username         string        `yaml:"username"`
	Password         string        `yaml:"password"`
	SecurityMode     string        `yaml:"security_mode"`
	SecurityPolicy   string        `yaml:"security_policy"`
	ApplicationName  string        `yaml:"application_name"`
	PublishInterval  time.Duration `yaml:"publish_interval"`
	SamplingInterval time.Duration `yaml:"sampling_interval"`
	Nodes            []NodeConfig  `yaml:"nodes"`
}

// NodeConfig binds one status tag to a machine.
type NodeConfig struct {
	NodeID    string `yaml:"node_id"`
	MachineID string `yaml:"machine_id"`
}

// Enabled reports whether an OPC UA state source was configured at all.
func (c *Config) Enabled() bool {
	return c.Endpoint != "" || len(c.Nodes) > 0
}

func (c *Config) ApplyDefaults() {
	if c.SecurityMode == "" {
		c.SecurityMode = "None"
	}
	if c.SecurityPolicy == "" {
		c.SecurityPolicy = "None"
	}
	if c.ApplicationName == "" {
		c.ApplicationName = "SmartForge State Watcher"
	}
	if c.PublishInterval <= 0 {
		c.PublishInterval = time.Second
	}
	if c.SamplingInterval < 0 {
		c.SamplingInterval = 0
	}
	for i := range c.Nodes {
		c.Nodes[i].NodeID = strings.TrimSpace(c.Nodes[i].NodeID)
		c.Nodes[i].MachineID = strings.TrimSpace(c.Nodes[i].MachineID)
	}
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if len(c.Nodes) == 0 {
		return errors.New("at least one node must be configured")
	}
	seen := make(map[string]struct{}, len(c.Nodes))
	for i, n := range c.Nodes {
		if n.NodeID == "" {
			return fmt.Errorf("nodes[%d]: node_id is required", i)
		}
		if n.MachineID == "" {
			return fmt.Errorf("nodes[%d]: machine_id is required", i)
		}
		if _, dup := seen[n.MachineID]; dup {
			return fmt.Errorf("nodes[%d]: machine %s is bound twice", i, n.MachineID)
		}
		seen[n.MachineID] = struct{}{}
	}
	return nil
}
