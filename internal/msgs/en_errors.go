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

package msgs

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/text/language"
)

const alsPrefix = "AL01"

var registered sync.Once
var ffe = func(key, translation string, statusHint ...int) i18n.ErrorMessageKey {
	registered.Do(func() {
		i18n.RegisterPrefix(alsPrefix, "Account Lookup Service")
	})
	if !strings.HasPrefix(key, alsPrefix) {
		panic(fmt.Errorf("must have prefix '%s': %s", alsPrefix, key))
	}
	return i18n.FFE(language.AmericanEnglish, key, translation, statusHint...)
}

var (
	// Components AL0100XX
	MsgComponentDBInitError              = ffe("AL010000", "Error initializing database")
	MsgComponentDBStartError             = ffe("AL010001", "Error starting database")
	MsgComponentOracleMgrInitError       = ffe("AL010002", "Error initializing oracle manager")
	MsgComponentEndpointMgrInitError     = ffe("AL010003", "Error initializing endpoint manager")
	MsgComponentProxyDirectoryInitError  = ffe("AL010004", "Error initializing proxy directory")
	MsgComponentProxyDirectoryStartError = ffe("AL010005", "Error starting proxy directory")
	MsgComponentDiscoveryInitError       = ffe("AL010006", "Error initializing discovery orchestrator")
	MsgComponentDiscoveryStartError      = ffe("AL010007", "Error starting discovery orchestrator")
	MsgComponentTransportInitError       = ffe("AL010008", "Error initializing transport")
	MsgComponentAPIServerInitError       = ffe("AL010009", "Error initializing API server")
	MsgComponentAPIServerStartError      = ffe("AL010010", "Error starting API server")
	MsgComponentMetricsServerInitError   = ffe("AL010011", "Error initializing metrics server")
	MsgComponentMetricsServerStartError  = ffe("AL010012", "Error starting metrics server")
	MsgComponentCorrelatorInitError      = ffe("AL010013", "Error initializing callback correlator")
	MsgComponentOracleMgrStartError      = ffe("AL010014", "Error starting oracle manager")
	MsgComponentEndpointMgrStartError    = ffe("AL010015", "Error starting endpoint manager")
	MsgComponentCorrelatorStartError     = ffe("AL010016", "Error starting callback correlator")
	MsgComponentTransportStartError      = ffe("AL010017", "Error starting transport")

	// Config AL0101XX
	MsgConfigFileMissing        = ffe("AL010100", "Config file not found at path: %s")
	MsgConfigFileReadError      = ffe("AL010101", "Failed to read config file %s with error: %s")
	MsgConfigFileParseError     = ffe("AL010102", "Failed to parse config file: %s")
	MsgConfigRedisNoAddresses   = ffe("AL010103", "At least one proxy cache address must be configured")
	MsgConfigBootstrapArgs      = ffe("AL010104", "Usage: %s <config-file>")
	MsgConfigListenerAddrFailed = ffe("AL010105", "Failed to listen on %s: %s")
	MsgHTTPServerMissingPort    = ffe("AL010106", "Port must be configured for the %s server")
	MsgHTTPServerNoHijack       = ffe("AL010107", "Response writer %T does not support connection hijacking")

	// Persistence AL0102XX
	MsgPersistenceInvalidType         = ffe("AL010200", "Invalid database type: %s")
	MsgPersistenceMissingURI          = ffe("AL010201", "Missing database connection DSN")
	MsgPersistenceInitFailed          = ffe("AL010202", "Database init failed")
	MsgPersistenceMissingMigrationDir = ffe("AL010203", "Missing database migration directory for autoMigrate")
	MsgPersistenceMigrationFailed     = ffe("AL010204", "Database migration failed")
	MsgPersistenceNamedLockFailed     = ffe("AL010205", "Failed to take named lock '%s'")

	// Cache AL0103XX
	MsgCacheGenerationTimeout = ffe("AL010300", "Cache generation for key '%s' exceeded %s", http.StatusGatewayTimeout)

	// Validation AL0104XX
	MsgPartyIdentifierInvalid    = ffe("AL010400", "Invalid party identifier: %s", http.StatusBadRequest)
	MsgPartyIdTypeMissing        = ffe("AL010401", "Party identifier type is required", http.StatusBadRequest)
	MsgPartyIdMissing            = ffe("AL010402", "Party identifier value is required", http.StatusBadRequest)
	MsgPartyIdTypeUnsupported    = ffe("AL010403", "Unsupported party identifier type '%s'", http.StatusBadRequest)
	MsgCurrencyInvalid           = ffe("AL010404", "Invalid currency code '%s'", http.StatusBadRequest)
	MsgSourceMissing             = ffe("AL010405", "Request source (FSPIOP-Source) is required", http.StatusBadRequest)
	MsgEndpointTypeInvalid       = ffe("AL010406", "Invalid endpoint type '%s'", http.StatusBadRequest)
	MsgFspIdMissing              = ffe("AL010407", "Participant identifier is required", http.StatusBadRequest)
	MsgEndpointValueMissing      = ffe("AL010408", "Endpoint value is required", http.StatusBadRequest)
	MsgCorrelationIDMissing      = ffe("AL010409", "Correlation identifier (X-Correlation-ID) is required", http.StatusBadRequest)
	MsgRequestBodyInvalid        = ffe("AL010410", "Invalid request body: %s", http.StatusBadRequest)
	MsgProxyIdMissing            = ffe("AL010411", "Proxy identifier is required", http.StatusBadRequest)
	MsgOracleDuplicateDefault    = ffe("AL010412", "An active default association already exists for scope %s (fspId=%s)", http.StatusConflict)
	MsgPartyIdentifierTooLong    = ffe("AL010413", "Party identifier field '%s' exceeds %d characters", http.StatusBadRequest)
	MsgDiscoveryAlreadyInFlight  = ffe("AL010414", "Discovery with correlation id '%s' is already in flight", http.StatusConflict)
	MsgDiscoveryNotFound         = ffe("AL010415", "No in-flight discovery with correlation id '%s'", http.StatusNotFound)
	MsgDiscoveryStopped          = ffe("AL010416", "Discovery orchestrator is stopped", http.StatusServiceUnavailable)
	MsgCallbackForTerminalState  = ffe("AL010417", "Discovery '%s' is already in terminal state %s", http.StatusConflict)
	MsgCallbackUnexpectedState   = ffe("AL010418", "Discovery '%s' is not awaiting a callback (state=%s)", http.StatusConflict)
	MsgErrorInformationMissing   = ffe("AL010419", "Error callback requires errorInformation", http.StatusBadRequest)
	MsgProxyMappingSelfReference = ffe("AL010420", "Participant '%s' cannot be proxied by itself", http.StatusBadRequest)
	MsgCallbackSourceMismatch    = ffe("AL010421", "Callback for discovery '%s' from '%s' but the request was forwarded to '%s'", http.StatusForbidden)
	MsgRequestBodyTooLarge       = ffe("AL010422", "Request body exceeds %d bytes", http.StatusRequestEntityTooLarge)

	// Oracle AL0105XX
	MsgOracleAssociationNotFound = ffe("AL010500", "No active oracle association for %s", http.StatusNotFound)
	MsgOracleRegistryUnavailable = ffe("AL010501", "Oracle registry unavailable", http.StatusServiceUnavailable)

	// Endpoints AL0106XX
	MsgEndpointNotFound            = ffe("AL010600", "Participant '%s' has no endpoint of type %s", http.StatusNotFound)
	MsgEndpointRegistryUnavailable = ffe("AL010601", "Endpoint registry unavailable", http.StatusServiceUnavailable)

	// Proxy AL0107XX
	MsgProxyNotFound            = ffe("AL010700", "Participant '%s' is not reachable via any proxy", http.StatusNotFound)
	MsgProxyLoopDetected        = ffe("AL010701", "Proxy '%s' has already been visited by this discovery")
	MsgProxyRegistryUnavailable = ffe("AL010702", "Proxy registry unavailable", http.StatusServiceUnavailable)
	MsgProxyCacheConnectFailed  = ffe("AL010703", "Failed to connect to proxy cache cluster")
	MsgProxyHopsExhausted       = ffe("AL010704", "Proxy hop limit %d reached")

	// Transport AL0108XX
	MsgForwardFailed       = ffe("AL010800", "Forwarding to %s failed", http.StatusBadGateway)
	MsgForwardBadStatus    = ffe("AL010801", "Forwarding to %s returned status %d", http.StatusBadGateway)
	MsgDeliveryFailed      = ffe("AL010802", "Delivery to source %s failed after %d attempts", http.StatusBadGateway)
	MsgEndpointURLInvalid  = ffe("AL010803", "Endpoint URL '%s' is invalid")
	MsgContextCanceled     = ffe("AL010804", "Context canceled")
	MsgRetryAttemptsFailed = ffe("AL010805", "Retry attempts exhausted")
	MsgDeliveryBadStatus   = ffe("AL010806", "Delivery to %s returned status %d", http.StatusBadGateway)
	MsgDeliveryRequestErr  = ffe("AL010807", "Delivery to %s failed", http.StatusBadGateway)

	// Discovery AL0109XX
	MsgDiscoveryTimedOut       = ffe("AL010900", "Discovery '%s' timed out after %s", http.StatusGatewayTimeout)
	MsgDiscoveryUnresolved     = ffe("AL010901", "No participant or proxy could be resolved for %s", http.StatusNotFound)
	MsgDiscoveryFailed         = ffe("AL010902", "Discovery '%s' failed: %s")
	MsgDiscoveryPartyNotFound  = ffe("AL010903", "Party %s not found by %s", http.StatusNotFound)
	MsgDiscoveryNoDestinations = ffe("AL010904", "Participant '%s' has neither an endpoint nor a proxy", http.StatusNotFound)
)
