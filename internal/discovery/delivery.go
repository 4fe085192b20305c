/*
 * Copyright © 2025 Kaleido, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package discovery

import (
	"context"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/components"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/alstypes"
	"github.com/mojaloop/account-lookup-service-sub002/pkg/log"
)

// deliverAsync sends the outcome of a finished discovery back to the participant that asked
func (dm *discoveryManager) deliverAsync(dr *alstypes.DiscoveryRequest, endpointType alstypes.EndpointType, source string, body interface{}) {
	ctx := log.WithCorrelationID(dm.bgCtx, dr.CorrelationID)
	dm.deliveries.Add(1)
	go func() {
		defer dm.deliveries.Done()
		if err := dm.deliver(ctx, dr, endpointType, source, body); err != nil {
			dm.metrics.IncDeliveryFailed()
			log.L(ctx).Errorf("Discovery outcome %s was not delivered to %s: %s", dr.State, dr.Source, err)
		}
	}()
}

func (dm *discoveryManager) deliver(ctx context.Context, dr *alstypes.DiscoveryRequest, endpointType alstypes.EndpointType, source string, body interface{}) error {
	url, err := dm.endpoints.RenderEndpoint(ctx, dr.Source, endpointType, dr.Party)
	if err != nil {
		return err
	}
	req := &components.DeliveryRequest{
		URL:           url,
		CorrelationID: dr.CorrelationID,
		Source:        source,
		Destination:   dr.Source,
		Body:          body,
	}
	attempts := 0
	err = dm.deliveryRetry.Do(ctx, func(attempt int) (bool, error) {
		attempts = attempt
		return dm.transport.Deliver(ctx, req)
	})
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgDeliveryFailed, dr.Source, attempts)
	}
	log.L(ctx).Debugf("Delivered %s to %s (attempts=%d)", dr.State, dr.Source, attempts)
	return nil
}
