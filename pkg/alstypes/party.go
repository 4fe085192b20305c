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
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/mojaloop/account-lookup-service-sub002/internal/msgs"
)

type PartyIdType string

const (
	PartyIdTypeMSISDN         PartyIdType = "MSISDN"
	PartyIdTypeEmail          PartyIdType = "EMAIL"
	PartyIdTypePersonalID     PartyIdType = "PERSONAL_ID"
	PartyIdTypeBusiness       PartyIdType = "BUSINESS"
	PartyIdTypeDevice         PartyIdType = "DEVICE"
	PartyIdTypeAccountID      PartyIdType = "ACCOUNT_ID"
	PartyIdTypeIBAN           PartyIdType = "IBAN"
	PartyIdTypeAlias          PartyIdType = "ALIAS"
	PartyIdTypeConsent        PartyIdType = "CONSENT"
	PartyIdTypeThirdPartyLink PartyIdType = "THIRD_PARTY_LINK"
)

const maxPartyIdentifierFieldLen = 128

var supportedPartyIdTypes = map[PartyIdType]bool{
	PartyIdTypeMSISDN:         true,
	PartyIdTypeEmail:          true,
	PartyIdTypePersonalID:     true,
	PartyIdTypeBusiness:       true,
	PartyIdTypeDevice:         true,
	PartyIdTypeAccountID:      true,
	PartyIdTypeIBAN:           true,
	PartyIdTypeAlias:          true,
	PartyIdTypeConsent:        true,
	PartyIdTypeThirdPartyLink: true,
}

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// PartyIdentifier is a value type, copies are never mutated after Validate
type PartyIdentifier struct {
	Type     PartyIdType `json:"partyIdType"`
	ID       string      `json:"partyIdentifier"`
	SubID    string      `json:"partySubIdOrType,omitempty"`
	Currency string      `json:"currency,omitempty"`
}

func (p PartyIdentifier) Validate(ctx context.Context) error {
	if p.Type == "" {
		return i18n.NewError(ctx, msgs.MsgPartyIdTypeMissing)
	}
	if !supportedPartyIdTypes[p.Type] {
		return i18n.NewError(ctx, msgs.MsgPartyIdTypeUnsupported, p.Type)
	}
	if strings.TrimSpace(p.ID) == "" {
		return i18n.NewError(ctx, msgs.MsgPartyIdMissing)
	}
	for name, v := range map[string]string{"partyIdentifier": p.ID, "partySubIdOrType": p.SubID} {
		if len(v) > maxPartyIdentifierFieldLen {
			return i18n.NewError(ctx, msgs.MsgPartyIdentifierTooLong, name, maxPartyIdentifierFieldLen)
		}
	}
	if p.Currency != "" && !currencyRegex.MatchString(p.Currency) {
		return i18n.NewError(ctx, msgs.MsgCurrencyInvalid, p.Currency)
	}
	return nil
}

func (p PartyIdentifier) String() string {
	s := fmt.Sprintf("%s/%s", p.Type, p.ID)
	if p.SubID != "" {
		s += "/" + p.SubID
	}
	if p.Currency != "" {
		s += "@" + p.Currency
	}
	return s
}
