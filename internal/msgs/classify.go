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
	"errors"

	"github.com/hyperledger/firefly-common/pkg/i18n"
)

type keyedError interface {
	error
	MessageKey() i18n.ErrorMessageKey
}

// Is reports whether any error in the chain was created from the given message key
func Is(err error, key i18n.ErrorMessageKey) bool {
	var ke keyedError
	for err != nil {
		if errors.As(err, &ke) {
			if ke.MessageKey() == key {
				return true
			}
			err = errors.Unwrap(ke)
			continue
		}
		return false
	}
	return false
}

// Key returns the message key of the outermost keyed error in the chain, or "" if there is none
func Key(err error) i18n.ErrorMessageKey {
	var ke keyedError
	if errors.As(err, &ke) {
		return ke.MessageKey()
	}
	return ""
}
