/*
Copyright 2025 Mirantis IT.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package rados

import (
	"strconv"

	"github.com/ceph/go-ceph/rados"
	"github.com/ceph/go-ceph/rbd"
	"github.com/pkg/errors"

	"github.com/Mirantis/ceph-connector/pkg/cluster"
	cephcommon "github.com/Mirantis/ceph-connector/pkg/common"
)

var _ cluster.Connection = &Connection{}

type Options struct {
	// CephConf is a path to ceph.conf, default search path is used if empty
	CephConf string
	Keyring  string
}

// Connection is a librados backed cluster connection
type Connection struct {
	conn *rados.Conn
}

func Connect(opts Options) (*Connection, error) {
	conn, err := rados.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create rados connection")
	}
	if opts.CephConf != "" {
		err = conn.ReadConfigFile(opts.CephConf)
	} else {
		err = conn.ReadDefaultConfigFile()
	}
	if err != nil {
		conn.Shutdown()
		return nil, errors.Wrap(err, "failed to read ceph config")
	}
	timeout := strconv.Itoa(cephcommon.RunCephCommandTimeout)
	options := []struct{ key, val string }{
		{"rados_osd_op_timeout", timeout},
		{"rados_mon_op_timeout", timeout},
		{"client_mount_timeout", timeout},
	}
	if opts.Keyring != "" {
		options = append(options, struct{ key, val string }{"keyring", opts.Keyring})
	}
	for _, opt := range options {
		if err := conn.SetConfigOption(opt.key, opt.val); err != nil {
			conn.Shutdown()
			return nil, errors.Wrapf(err, "failed to set %s", opt.key)
		}
	}
	if err := conn.Connect(); err != nil {
		conn.Shutdown()
		return nil, errors.Wrap(err, "failed to connect to ceph cluster")
	}
	return &Connection{conn: conn}, nil
}

func (c *Connection) MonCommand(args []byte) ([]byte, string, error) {
	return c.conn.MonCommand(args)
}

func (c *Connection) MgrCommand(args []byte) ([]byte, string, error) {
	return c.conn.MgrCommand([][]byte{args})
}

func (c *Connection) FSID() (string, error) {
	return c.conn.GetFSID()
}

func (c *Connection) PoolExists(pool string) (bool, error) {
	pools, err := c.conn.ListPools()
	if err != nil {
		return false, err
	}
	return cephcommon.Contains(pools, pool), nil
}

func (c *Connection) NamespaceExists(pool, namespace string) (bool, error) {
	ioctx, err := c.conn.OpenIOContext(pool)
	if err != nil {
		return false, errors.Wrapf(err, "failed to open pool '%s'", pool)
	}
	defer ioctx.Destroy()
	return rbd.NamespaceExists(ioctx, namespace)
}

func (c *Connection) InitRBDPool(pool string) error {
	ioctx, err := c.conn.OpenIOContext(pool)
	if err != nil {
		return errors.Wrapf(err, "failed to open pool '%s'", pool)
	}
	defer ioctx.Destroy()
	return rbd.PoolInit(ioctx, false)
}

func (c *Connection) Shutdown() {
	c.conn.Shutdown()
}
