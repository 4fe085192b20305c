// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package alstypes

import (
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
)

const (
	ErrorCodeValidation           = "3100"
	ErrorCodeGenericPartyNotFound = "3200"
	ErrorCodePartyNotFound        = "3204"
	ErrorCodeServiceUnavailable   = "2003"
	ErrorCodeTimeout              = "3300"
)

type ErrorInformation struct {
	ErrorCode        string `json:"errorCode"`
	ErrorDescription string `json:"errorDescription"`
}

type ErrorInformationObject struct {
	ErrorInformation ErrorInformation `json:"errorInformation"`
}

// ErrorInformationFor maps a terminal error to the code delivered to the source
func ErrorInformationFor(err error) ErrorInformation {
	return ErrorInformation{
		ErrorCode:        errorCodeFor(msgs.Key(err)),
		ErrorDescription: err.Error(),
	}
}

func errorCodeFor(key i18n.ErrorMessageKey) string {
	switch key {
	case msgs.MsgDiscoveryTimedOut, msgs.MsgCacheGenerationTimeout:
		return ErrorCodeTimeout
	case msgs.MsgDiscoveryPartyNotFound, msgs.MsgOracleAssociationNotFound:
		return ErrorCodePartyNotFound
	case msgs.MsgDiscoveryUnresolved, msgs.MsgProxyNotFound, msgs.MsgProxyLoopDetected,
		msgs.MsgEndpointNotFound, msgs.MsgDiscoveryNoDestinations, msgs.MsgProxyHopsExhausted:
		return ErrorCodeGenericPartyNotFound
	case msgs.MsgPartyIdentifierInvalid, msgs.MsgPartyIdTypeMissing, msgs.MsgPartyIdMissing,
		msgs.MsgPartyIdTypeUnsupported, msgs.MsgCurrencyInvalid, msgs.MsgPartyIdentifierTooLong,
		msgs.MsgSourceMissing, msgs.MsgCorrelationIDMissing, msgs.MsgRequestBodyInvalid, msgs.MsgErrorInformationMissing,
		msgs.MsgRequestBodyTooLarge, msgs.MsgCallbackSourceMismatch:
		return ErrorCodeValidation
	default:
		return ErrorCodeServiceUnavailable
	}
}
