package gateway

// GraphQL documents sent to the storefront gateway. Mutation root fields are
// aliased to "payload" so one response type decodes every mutation of a family.

const cartFields = `
fragment CartFields on Cart {
  id
  createdAt
  totalQuantity
  buyerIdentity {
    customer {
      id
    }
  }
  cost {
    subtotalAmount { amount currencyCode }
    totalAmount { amount currencyCode }
    totalTaxAmount { amount currencyCode }
  }
  lines(first: 250) {
    nodes {
      id
      quantity
      cost {
        subtotalAmount { amount currencyCode }
        totalAmount { amount currencyCode }
      }
      merchandise {
        ... on ProductVariant {
          id
          title
          quantityAvailable
          product {
            featuredImage { url }
            title
            handle
          }
        }
      }
    }
  }
}
`

const cartPayloadSelection = `{
    cart { ...CartFields }
    userErrors { code field message }
  }`

const queryCart = `query Cart($id: ID!) {
  cart(id: $id) { ...CartFields }
}
` + cartFields

const mutationCartCreate = `mutation CartCreate($input: CartInput!) {
  payload: cartCreate(input: $input) ` + cartPayloadSelection + `
}
` + cartFields

const mutationCartLinesAdd = `mutation CartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  payload: cartLinesAdd(cartId: $cartId, lines: $lines) ` + cartPayloadSelection + `
}
` + cartFields

const mutationCartLinesRemove = `mutation CartLinesRemove($cartId: ID!, $lineIds: [ID!]!) {
  payload: cartLinesRemove(cartId: $cartId, lineIds: $lineIds) ` + cartPayloadSelection + `
}
` + cartFields

const mutationCartLinesUpdate = `mutation CartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  payload: cartLinesUpdate(cartId: $cartId, lines: $lines) ` + cartPayloadSelection + `
}
` + cartFields

const queryFrontPage = `query FrontPage($first: Int!) {
  collection(handle: "frontpage") {
    products(first: $first, sortKey: BEST_SELLING) {
      nodes {
        id
        description
        title
        handle
        priceRange {
          maxVariantPrice { amount currencyCode }
          minVariantPrice { amount currencyCode }
        }
        images(first: 1) {
          nodes { url }
        }
      }
    }
  }
}
`

const queryProduct = `query Product($handle: String!, $images: Int!) {
  product(handle: $handle) {
    handle
    id
    title
    description
    images(first: $images) {
      nodes { url }
    }
    featuredImage { id }
    options(first: 20) {
      id
      name
      values
    }
    totalInventory
    variants(first: 100) {
      nodes {
        id
        availableForSale
        quantityAvailable
        price { amount currencyCode }
        selectedOptions { name value }
      }
    }
  }
}
`

const queryProductHandles = `query ProductHandles {
  collection(handle: "frontpage") {
    products(first: 100) {
      nodes { handle }
    }
  }
}
`

const customerUserErrorsSelection = `customerUserErrors { code field message }`

const mutationCustomerCreate = `mutation CustomerCreate($input: CustomerCreateInput!) {
  payload: customerCreate(input: $input) {
    customer { id }
    ` + customerUserErrorsSelection + `
  }
}
`

const mutationCustomerAccessTokenCreate = `mutation CustomerAccessTokenCreate($input: CustomerAccessTokenCreateInput!) {
  payload: customerAccessTokenCreate(input: $input) {
    customerAccessToken { accessToken expiresAt }
    ` + customerUserErrorsSelection + `
  }
}
`

const mutationCustomerAccessTokenDelete = `mutation CustomerAccessTokenDelete($customerAccessToken: String!) {
  payload: customerAccessTokenDelete(customerAccessToken: $customerAccessToken) {
    deletedAccessToken
    userErrors { field message }
  }
}
`

const queryCustomer = `query Customer($customerAccessToken: String!) {
  customer(customerAccessToken: $customerAccessToken) {
    acceptsMarketing
    createdAt
    defaultAddress { id }
    email
    firstName
    lastName
    phone
    lastIncompleteCheckout { id }
    orders(first: 250) {
      nodes {
        fulfillmentStatus
        cancelReason
        canceledAt
        shippingAddress { id }
        orderNumber
        totalPrice { amount currencyCode }
        totalShippingPrice { amount currencyCode }
        totalTax { amount currencyCode }
        processedAt
      }
    }
    addresses(first: 250) {
      nodes {
        id
        address1
        address2
        city
        company
        firstName
        lastName
        phone
        provinceCode
        country
        zip
      }
    }
  }
}
`

const queryAccountDetails = `query AccountDetails($customerAccessToken: String!) {
  customer(customerAccessToken: $customerAccessToken) {
    acceptsMarketing
    firstName
    lastName
    email
    phone
  }
}
`

const mutationCustomerUpdate = `mutation CustomerUpdate($customerAccessToken: String!, $customer: CustomerUpdateInput!) {
  payload: customerUpdate(customerAccessToken: $customerAccessToken, customer: $customer) {
    customer { id }
    customerAccessToken { accessToken expiresAt }
    ` + customerUserErrorsSelection + `
  }
}
`

const mutationCustomerRecover = `mutation CustomerRecover($email: String!) {
  payload: customerRecover(email: $email) {
    ` + customerUserErrorsSelection + `
  }
}
`

const mutationCustomerReset = `mutation CustomerReset($id: ID!, $input: CustomerResetInput!) {
  payload: customerReset(id: $id, input: $input) {
    customerAccessToken { accessToken expiresAt }
    ` + customerUserErrorsSelection + `
  }
}
`

const mutationCheckoutCreate = `mutation CheckoutCreate($input: CheckoutCreateInput!) {
  payload: checkoutCreate(input: $input) {
    checkout {
      id
      webUrl
      email
      subtotalPrice { amount currencyCode }
      totalPrice { amount currencyCode }
      totalTax { amount currencyCode }
      lineItems(first: 250) {
        nodes {
          id
          title
          quantity
          variant { id }
        }
      }
    }
    checkoutUserErrors { code field message }
  }
}
`
