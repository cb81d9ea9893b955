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

package rgw

// Multisite names rgw realm, zonegroup and zone, all or none are set
type Multisite struct {
	Realm     string
	ZoneGroup string
	Zone      string
}

func (m Multisite) Configured() bool {
	return m.Realm != "" || m.ZoneGroup != "" || m.Zone != ""
}

func (m Multisite) Complete() bool {
	return m.Realm != "" && m.ZoneGroup != "" && m.Zone != ""
}

// Args returns radosgw-admin flags selecting multisite objects
func (m Multisite) Args() []string {
	if !m.Complete() {
		return nil
	}
	return []string{"--rgw-realm", m.Realm, "--rgw-zonegroup", m.ZoneGroup, "--rgw-zone", m.Zone}
}
